package labnotes

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alnah/labnotes/internal/assets"
	"github.com/alnah/labnotes/internal/katex"
)

// Output formats.
const (
	FormatHTML  = "html"
	FormatLaTeX = "latex"
)

// Built-in themes of the HTML output.
const (
	ThemeDark  = assets.ThemeDark
	ThemeLight = assets.ThemeLight
)

// Input contains conversion parameters.
type Input struct {
	Markdown string // Markdown content, front matter included (required)
	Title    string // Page title; empty uses the front matter title, then the first heading
	Format   string // FormatHTML or FormatLaTeX; empty means FormatHTML

	// FilesPrefix is the URL under which the note's relative images and
	// attachments are served. Links to sibling .md notes become note URLs.
	// Empty leaves relative links as written. HTML only.
	FilesPrefix string
}

// Validate checks that the input can be converted.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	switch in.Format {
	case "", FormatHTML, FormatLaTeX:
		return nil
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidFormat, in.Format, FormatHTML, FormatLaTeX)
	}
}

// ConvertResult holds the output of a conversion. Only the field of the
// requested format is set.
type ConvertResult struct {
	HTML  []byte
	LaTeX []byte
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	theme       string
	assetPath   string
	dateLayout  string
	browserMath bool
	katexScript string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout bounds each conversion, formula typesetting included.
// Panics if d is not positive.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("labnotes: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithTheme selects the stylesheet of HTML pages by name: "dark", "light"
// or a custom theme found under the asset path.
func WithTheme(name string) Option {
	return func(c *Converter) {
		c.cfg.theme = name
	}
}

// WithAssetPath overrides the embedded styles and templates with the files
// found under dir. Files it lacks come from the embedded set.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithDateLayout reformats front matter dates with a Go time layout.
// Dates that do not parse are shown as written.
func WithDateLayout(layout string) Option {
	return func(c *Converter) {
		c.cfg.dateLayout = layout
	}
}

// WithMathRenderer typesets formulas of HTML pages with r. The converter
// does not close r.
func WithMathRenderer(r katex.Renderer) Option {
	return func(c *Converter) {
		c.math = r
		c.cfg.browserMath = false
	}
}

// WithBrowserMath typesets formulas with KaTeX in headless Chrome. The
// browser starts with the first formula and stops on Close. When no browser
// can be started, pages fall back to client-side typesetting.
func WithBrowserMath() Option {
	return func(c *Converter) {
		c.math = nil
		c.cfg.browserMath = true
	}
}

// WithKaTeXScript loads KaTeX from url in browser mode, for machines
// without access to the CDN.
func WithKaTeXScript(url string) Option {
	return func(c *Converter) {
		c.cfg.katexScript = url
	}
}

// WithLogger receives the line logged when server-side math falls back to
// client-side typesetting. Nil discards it.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}
