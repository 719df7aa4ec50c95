package slugs

import (
	"strconv"
	"strings"
)

// MaxSuggestions caps the alternatives produced for one base candidate.
const MaxSuggestions = 10

const numericVariants = 5

// Candidate is one entry of a suggestion list before availability is known.
type Candidate struct {
	Slug       string
	IsOriginal bool
}

// Candidates lays out the alternatives for base in their fixed order:
//
//	base, base-1 .. base-5,
//	base-portfolio, base-dev, base-<year>, base-official, base-pro,
//	first-last (only when base has two or more hyphen-separated segments)
//
// Suffixed variants shorten base so the result stays within b.Max. Duplicates
// are dropped and the list is capped at MaxSuggestions.
func (b Bounds) Candidates(base string, year int) []Candidate {
	max := b.max()
	out := make([]Candidate, 0, MaxSuggestions)
	seen := make(map[string]struct{}, MaxSuggestions+2)

	add := func(slug string, original bool) {
		if slug == "" || len(out) >= MaxSuggestions {
			return
		}
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		out = append(out, Candidate{Slug: slug, IsOriginal: original})
	}

	add(base, true)
	for i := 1; i <= numericVariants; i++ {
		add(withSuffix(base, strconv.Itoa(i), max), false)
	}
	for _, suffix := range []string{"portfolio", "dev", strconv.Itoa(year), "official", "pro"} {
		add(withSuffix(base, suffix, max), false)
	}
	if parts := strings.Split(base, "-"); len(parts) >= 2 {
		first, last := parts[0], parts[len(parts)-1]
		if first != "" && last != "" {
			add(first+"-"+last, false)
		}
	}
	return out
}

// Candidates uses DefaultBounds.
func Candidates(base string, year int) []Candidate {
	return DefaultBounds.Candidates(base, year)
}

// Suffixed appends "-"+suffix to base, shortening base so the result fits
// b.Max. It returns "" when the suffix alone does not fit.
func (b Bounds) Suffixed(base, suffix string) string {
	return withSuffix(base, suffix, b.max())
}

func withSuffix(base, suffix string, max int) string {
	room := max - len(suffix) - 1
	if room <= 0 {
		return ""
	}
	stem := base
	if len(stem) > room {
		stem = strings.TrimRight(stem[:room], "-")
	}
	if stem == "" {
		return ""
	}
	return stem + "-" + suffix
}
