package notes

import "errors"

// Sentinel errors for note lookup.
var (
	ErrInvalidLength    = errors.New("note id must be 1 to 128 characters")
	ErrInvalidCharacter = errors.New("note id may only contain letters, digits, '-' and '_'")
	ErrNotFound         = errors.New("note not found")
	ErrTooLarge         = errors.New("note file too large")
	ErrFrontMatter      = errors.New("invalid front matter")
)
