package domain

// TemplateKind selects the presentation template that renders a portfolio.
type TemplateKind string

const (
	TemplateModern       TemplateKind = "modern"
	TemplateMinimal      TemplateKind = "minimal"
	TemplateCreative     TemplateKind = "creative"
	TemplateDeveloper    TemplateKind = "developer"
	TemplateProfessional TemplateKind = "professional"
)

// Template describes one entry of the template gallery.
type Template struct {
	Kind        TemplateKind `json:"kind"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
}

var templates = []Template{
	{Kind: TemplateModern, Name: "Modern", Description: "Bold hero section with animated project cards."},
	{Kind: TemplateMinimal, Name: "Minimal", Description: "Single column, typography first."},
	{Kind: TemplateCreative, Name: "Creative", Description: "Gallery-heavy layout for visual work."},
	{Kind: TemplateDeveloper, Name: "Developer", Description: "Terminal styling with skills and repositories."},
	{Kind: TemplateProfessional, Name: "Professional", Description: "Resume-style timeline of experience."},
}

// Templates returns the gallery in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Valid reports whether k is a known template kind.
func (k TemplateKind) Valid() bool {
	for _, t := range templates {
		if t.Kind == k {
			return true
		}
	}
	return false
}
