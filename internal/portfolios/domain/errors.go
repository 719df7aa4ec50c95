package domain

import (
	"errors"

	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
)

var (
	ErrNotFound          = errors.New("portfolio not found")
	ErrForbidden         = errors.New("portfolio belongs to another user")
	ErrUnauthenticated   = errors.New("user not authenticated")
	ErrPortfolioExists   = errors.New("portfolio already exists for this template")
	ErrInvalidTemplate   = errors.New("unknown template kind")
	ErrInvalidTransition = errors.New("slug action not allowed in current state")

	// ErrSlugTaken is what the store returns when a write hits a slug
	// uniqueness constraint. Services turn it into a *ConflictError.
	ErrSlugTaken = errors.New("slug already taken")
)

// ValidationError is a locally recoverable input problem. Rule names the
// violated constraint so callers can correct it.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewSlugValidationError converts a slug format failure into a ValidationError.
func NewSlugValidationError(err error) *ValidationError {
	var fe *slugs.FormatError
	if errors.As(err, &fe) {
		return &ValidationError{Rule: string(fe.Rule), Message: fe.Error()}
	}
	return &ValidationError{Rule: "invalid", Message: err.Error()}
}

// Suggestion is one alternative slug with its availability at check time.
type Suggestion struct {
	Slug       string `json:"slug"`
	Available  bool   `json:"available"`
	IsOriginal bool   `json:"is_original,omitempty"`
}

// ConflictError means the requested slug is held by another portfolio.
// It carries alternatives so the caller can re-prompt.
type ConflictError struct {
	TakenSlug   string
	Suggestions []Suggestion
}

func (e *ConflictError) Error() string {
	return "slug " + e.TakenSlug + " is already taken"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSlugTaken
}
