package katex

import "errors"

// Sentinel errors for math rendering.
var (
	// ErrParse reports a formula KaTeX could not typeset.
	ErrParse = errors.New("invalid formula")

	ErrBrowserConnect = errors.New("browser connection failed")
	ErrPageLoad       = errors.New("loading KaTeX failed")
	ErrRender         = errors.New("math rendering failed")
)
