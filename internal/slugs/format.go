package slugs

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule names the format constraint a candidate violated.
type Rule string

const (
	RuleTooShort           Rule = "too_short"
	RuleTooLong            Rule = "too_long"
	RuleInvalidCharacters  Rule = "invalid_characters"
	RuleEdgeHyphen         Rule = "edge_hyphen"
	RuleConsecutiveHyphens Rule = "consecutive_hyphens"
)

var allowedChars = regexp.MustCompile(`^[a-z0-9-]+$`)

// FormatError reports which rule a candidate broke.
type FormatError struct {
	Slug string
	Rule Rule
	Min  int
	Max  int
}

func (e *FormatError) Error() string {
	switch e.Rule {
	case RuleTooShort:
		return fmt.Sprintf("slug must be at least %d characters", e.Min)
	case RuleTooLong:
		return fmt.Sprintf("slug must be at most %d characters", e.Max)
	case RuleInvalidCharacters:
		return "slug may only contain lowercase letters, numbers and hyphens"
	case RuleEdgeHyphen:
		return "slug cannot start or end with a hyphen"
	case RuleConsecutiveHyphens:
		return "slug cannot contain consecutive hyphens"
	default:
		return "invalid slug"
	}
}

// ValidateFormat checks s against DefaultBounds.
func ValidateFormat(s string) error {
	return DefaultBounds.Validate(s)
}

// IsValidFormat reports whether s passes ValidateFormat.
func IsValidFormat(s string) bool {
	return ValidateFormat(s) == nil
}

// Validate returns a *FormatError for the first rule s violates, checked in
// the order length, character set, edge hyphens, consecutive hyphens.
func (b Bounds) Validate(s string) error {
	min, max := b.min(), b.max()
	fail := func(r Rule) error {
		return &FormatError{Slug: s, Rule: r, Min: min, Max: max}
	}

	switch {
	case len(s) < min:
		return fail(RuleTooShort)
	case len(s) > max:
		return fail(RuleTooLong)
	case !allowedChars.MatchString(s):
		return fail(RuleInvalidCharacters)
	case strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-"):
		return fail(RuleEdgeHyphen)
	case strings.Contains(s, "--"):
		return fail(RuleConsecutiveHyphens)
	}
	return nil
}

// Normalize trims surrounding whitespace and lowercases an owner-typed slug
// before validation. It does not repair anything else.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
