package katex

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"
	"sync/atomic"
)

// Version is the KaTeX release loaded from the CDN.
const Version = "0.16.11"

const cdnBase = "https://cdn.jsdelivr.net/npm/katex@" + Version + "/dist/"

// Asset URLs on the CDN.
const (
	StylesheetURL = cdnBase + "katex.min.css"
	ScriptURL     = cdnBase + "katex.min.js"
	AutoRenderURL = cdnBase + "contrib/auto-render.min.js"
)

// Renderer turns one formula into HTML.
type Renderer interface {
	// Render typesets tex. display selects block layout over inline.
	// A formula KaTeX rejects yields an error wrapping ErrParse.
	Render(ctx context.Context, tex string, display bool) (string, error)

	// Head returns the elements the page <head> needs for the output of
	// Render to display.
	Head() string
}

// Compile-time interface checks
var (
	_ Renderer = (*ClientRenderer)(nil)
	_ Renderer = (*BrowserRenderer)(nil)
	_ Renderer = (*Fallback)(nil)
)

// ClientRenderer defers typesetting to the reader's browser.
type ClientRenderer struct{}

// Render wraps tex in the delimiters KaTeX auto-render looks for. It never
// fails.
func (ClientRenderer) Render(_ context.Context, tex string, display bool) (string, error) {
	escaped := html.EscapeString(tex)
	if display {
		return `<div class="math display">\[` + escaped + `\]</div>`, nil
	}
	return `<span class="math inline">\(` + escaped + `\)</span>`, nil
}

// Head loads KaTeX and runs auto-render over the page body.
func (ClientRenderer) Head() string {
	return stylesheetLink +
		`<script defer src="` + ScriptURL + `" crossorigin="anonymous"></script>` +
		`<script defer src="` + AutoRenderURL + `" crossorigin="anonymous"` +
		` onload="renderMathInElement(document.body,{throwOnError:false})"></script>`
}

const stylesheetLink = `<link rel="stylesheet" href="` + StylesheetURL + `" crossorigin="anonymous">`

// Placeholder builds the marker shown in place of a formula that failed to
// render.
func Placeholder(err error, display bool) string {
	msg := html.EscapeString(strings.TrimPrefix(err.Error(), ErrParse.Error()+": "))
	if display {
		return `<div class="todo">` + msg + `</div>`
	}
	return `<span class="todo">` + msg + `</span>`
}

// Fallback renders with Primary and switches to Secondary for good when
// Primary fails for any reason other than a bad formula.
type Fallback struct {
	Primary   Renderer
	Secondary Renderer

	// Logger receives a line when the switch happens. Nil discards it.
	Logger *log.Logger

	failed atomic.Bool
}

// Render implements Renderer.
func (f *Fallback) Render(ctx context.Context, tex string, display bool) (string, error) {
	if !f.failed.Load() {
		out, err := f.Primary.Render(ctx, tex, display)
		if err == nil || errors.Is(err, ErrParse) || ctx.Err() != nil {
			return out, err
		}
		if f.failed.CompareAndSwap(false, true) && f.Logger != nil {
			f.Logger.Printf("[Math] server-side rendering unavailable, using client rendering: %v", err)
		}
	}
	return f.Secondary.Render(ctx, tex, display)
}

// Head returns the head elements of whichever renderer is active. Head
// must be called after the formulas of a page were rendered.
func (f *Fallback) Head() string {
	if f.failed.Load() {
		return f.Secondary.Head()
	}
	return f.Primary.Head()
}
