package labnotes

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"iter"
	"log"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/labnotes/internal/assets"
	"github.com/alnah/labnotes/internal/dateutil"
	"github.com/alnah/labnotes/internal/katex"
	"github.com/alnah/labnotes/internal/latex"
	"github.com/alnah/labnotes/internal/mdevent"
	"github.com/alnah/labnotes/internal/notes"
	"github.com/alnah/labnotes/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
)

// Code block colors per built-in theme. Custom themes use the dark one.
var highlightStyles = map[string]string{
	ThemeDark:  "monokai",
	ThemeLight: "github",
}

// Converter orchestrates the conversion of notes to HTML pages and LaTeX
// documents. Create with NewConverter, use Convert for conversion, and
// Close when done. A Converter is safe for concurrent use.
type Converter struct {
	cfg    converterConfig
	logger *log.Logger

	math    katex.Renderer
	browser *katex.BrowserRenderer // owned, nil unless WithBrowserMath

	htmlPrep      pipeline.MarkdownPreprocessor
	latexPrep     pipeline.MarkdownPreprocessor
	htmlConverter *pipeline.GoldmarkConverter
	cssInjector   pipeline.CSSInjector
	page          *pipeline.PageTemplate
	css           string
}

// NewConverter creates a Converter. Use options to customize behavior
// (e.g., WithTheme, WithBrowserMath, WithTimeout).
// Returns an error if the theme or page template cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			theme:   assets.DefaultTheme,
		},
		htmlPrep:    &pipeline.CommonMarkPreprocessor{Highlights: true},
		latexPrep:   &pipeline.CommonMarkPreprocessor{},
		cssInjector: &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.theme == "" {
		c.cfg.theme = assets.DefaultTheme
	}

	loader, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	css, err := loader.LoadStyle(c.cfg.theme)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTheme, c.cfg.theme, err)
	}
	highlight, err := highlightCSS(c.cfg.theme)
	if err != nil {
		return nil, fmt.Errorf("building highlight stylesheet: %w", err)
	}
	c.css = css + "\n" + highlight

	tmpl, err := loader.LoadTemplate(assets.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading page template: %w", err)
	}
	if c.page, err = pipeline.NewPageTemplate(tmpl); err != nil {
		return nil, err
	}

	if c.cfg.browserMath {
		c.browser = katex.NewBrowserRenderer(
			katex.WithTimeout(c.cfg.timeout),
			katex.WithScriptURL(c.cfg.katexScript),
		)
		c.math = &katex.Fallback{
			Primary:   c.browser,
			Secondary: katex.ClientRenderer{},
			Logger:    c.logger,
		}
	}
	c.htmlConverter = pipeline.NewGoldmarkConverter(c.math)

	return c, nil
}

// highlightCSS returns the code block stylesheet matching theme.
func highlightCSS(theme string) (string, error) {
	name, ok := highlightStyles[theme]
	if !ok {
		name = highlightStyles[ThemeDark]
	}

	var buf bytes.Buffer
	formatter := html.New(html.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Convert runs the pipeline of the requested format. The context is used
// for cancellation; the converter timeout applies on top of it.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	if input.Format == FormatLaTeX {
		out, err := c.toLaTeX(ctx, input)
		if err != nil {
			return nil, err
		}
		return &ConvertResult{LaTeX: out}, nil
	}

	out, err := c.toHTML(ctx, input)
	if err != nil {
		return nil, err
	}
	return &ConvertResult{HTML: out}, nil
}

func (c *Converter) toHTML(ctx context.Context, input Input) ([]byte, error) {
	// Highlights are applied to the body only, so front matter values
	// keep their == signs.
	content := c.latexPrep.PreprocessMarkdown(ctx, input.Markdown)

	var meta notes.Metadata
	front, body, hasFront := pipeline.SplitFrontMatter(content)
	if hasFront {
		var err error
		if meta, err = notes.ParseMetadata(front); err != nil {
			return nil, err
		}
	}

	body = c.htmlPrep.PreprocessMarkdown(ctx, body)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	fragment, err := c.htmlConverter.ToHTML(ctx, body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrHTMLConversion, err)
	}

	if input.FilesPrefix != "" {
		fragment, err = pipeline.RewriteRelativePaths(fragment, input.FilesPrefix)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	title := input.Title
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = notes.FirstHeading(body)
	}

	date := meta.Date
	if c.cfg.dateLayout != "" {
		date = dateutil.Format(date, c.cfg.dateLayout)
	}

	page, err := c.page.Render(ctx, &pipeline.PageData{
		Title:  title,
		Author: meta.Author,
		Date:   date,
		Tags:   meta.Tags,
		Head:   template.HTML(c.htmlConverter.Head()), // #nosec G203 -- fixed markup from the math renderer
		Body:   template.HTML(fragment),               // #nosec G203 -- raw HTML in notes is rendered as written
	})
	if err != nil {
		return nil, err
	}

	page = c.cssInjector.InjectCSS(ctx, page, c.css)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return []byte(page), nil
}

func (c *Converter) toLaTeX(ctx context.Context, input Input) ([]byte, error) {
	content := c.latexPrep.PreprocessMarkdown(ctx, input.Markdown)

	var buf bytes.Buffer
	err := latex.Write(&buf, untilDone(ctx, mdevent.Events(content)))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaTeXOutput, err)
	}
	return buf.Bytes(), nil
}

// untilDone stops seq once ctx is done.
func untilDone[E any](ctx context.Context, seq iter.Seq[E]) iter.Seq[E] {
	return func(yield func(E) bool) {
		for e := range seq {
			if ctx.Err() != nil || !yield(e) {
				return
			}
		}
	}
}

// Close releases the headless browser, if one was started.
func (c *Converter) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}
