package labnotes

import (
	"errors"

	"github.com/alnah/labnotes/internal/assets"
	"github.com/alnah/labnotes/internal/katex"
	"github.com/alnah/labnotes/internal/latex"
	"github.com/alnah/labnotes/internal/notes"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrInvalidFormat  = errors.New("invalid output format")
	ErrInvalidTheme   = errors.New("invalid theme")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrLaTeXOutput    = errors.New("LaTeX output failed")
	ErrPoolClosed     = errors.New("converter pool is closed")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrTemplateNotFound = assets.ErrTemplateNotFound

	// Math rendering errors, reported by server-side rendering.
	ErrBrowserConnect = katex.ErrBrowserConnect
	ErrPageLoad       = katex.ErrPageLoad

	// ErrFrontMatter reports a YAML front matter block that does not parse.
	ErrFrontMatter = notes.ErrFrontMatter

	// ErrUnbalanced reports a document whose structure could not be
	// written as LaTeX.
	ErrUnbalanced = latex.ErrUnbalanced
)
