// Package slugs holds the pure parts of slug handling: deriving a URL-safe
// candidate from free text, checking its format and laying out the ordered
// list of alternatives offered when a candidate is already taken.
package slugs

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"regexp"
	"strings"
)

const (
	// MinLength and MaxLength bound every slug, default or custom.
	MinLength = 3
	MaxLength = 50

	// FallbackTokenLength is the size of the random token used when a name
	// has no usable ASCII characters left after normalisation.
	FallbackTokenLength = 8

	tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
)

// Bounds are the inclusive length limits applied to slugs.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds is 3..50.
var DefaultBounds = Bounds{Min: MinLength, Max: MaxLength}

// Generate derives a candidate slug from a display name or title using
// DefaultBounds. It never fails: input that normalises to nothing yields a
// random token.
//
//	Generate("Jane Q. Public!!") // "jane-q-public"
//	Generate("日本語")            // e.g. "k3v9x0qa"
func Generate(raw string) string {
	return DefaultBounds.Generate(raw)
}

// Generate is Generate with b.Max as the truncation limit.
func (b Bounds) Generate(raw string) string {
	s := strings.ToLower(raw)
	s = disallowedChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return RandomToken(FallbackTokenLength)
	}
	return truncate(s, b.max())
}

// RandomToken returns n characters drawn from [a-z0-9].
func RandomToken(n int) string {
	if n <= 0 {
		return ""
	}
	max := big.NewInt(int64(len(tokenAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = tokenAlphabet[mrand.IntN(len(tokenAlphabet))]
			continue
		}
		out[i] = tokenAlphabet[idx.Int64()]
	}
	return string(out)
}

// truncate cuts s to at most max bytes without leaving a trailing hyphen.
// Input is already ASCII so byte slicing is safe.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}

func (b Bounds) max() int {
	if b.Max <= 0 {
		return MaxLength
	}
	return b.Max
}

func (b Bounds) min() int {
	if b.Min <= 0 {
		return MinLength
	}
	return b.Min
}
