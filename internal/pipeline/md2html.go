package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/labnotes/internal/katex"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter converts Markdown to an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// syntaxExtensions are shared by the HTML and LaTeX paths so both see the
// same document structure.
func syntaxExtensions() []goldmark.Extender {
	return []goldmark.Extender{
		extension.GFM,      // Tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1] footnotes
		Math,
	}
}

// NewParser returns a parser for lab notes Markdown without any renderer
// concerns.
func NewParser() parser.Parser {
	return goldmark.New(goldmark.WithExtensions(syntaxExtensions()...)).Parser()
}

// Parse parses source with p, resolving arXiv and DOI citations.
func Parse(p parser.Parser, source []byte) ast.Node {
	return p.Parse(text.NewReader(source), parser.WithContext(NewParseContext(source)))
}

// GoldmarkConverter converts Markdown to HTML using goldmark.
type GoldmarkConverter struct {
	md   goldmark.Markdown
	math katex.Renderer
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions,
// syntax highlighting and math. A nil math renderer uses client-side
// rendering.
func NewGoldmarkConverter(math katex.Renderer) *GoldmarkConverter {
	if math == nil {
		math = katex.ClientRenderer{}
	}

	exts := append(syntaxExtensions(),
		highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true), // styled by the theme stylesheet
			),
		),
	)
	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(), // raw HTML in notes is rendered as written
		),
	)
	return &GoldmarkConverter{md: md, math: math}
}

// Head returns the <head> elements the math renderer needs.
func (c *GoldmarkConverter) Head() string {
	return c.math.Head()
}

// ToHTML converts Markdown content to an HTML fragment.
// Goldmark has no context support, so the work runs in a goroutine and the
// caller stops waiting on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		source := []byte(content)
		doc := Parse(c.md.Parser(), source)

		if err := c.renderMath(ctx, doc); err != nil {
			done <- result{err: err}
			return
		}

		var buf bytes.Buffer
		if err := c.md.Renderer().Render(&buf, source, doc); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: ConvertMarkPlaceholders(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// renderMath fills in the HTML of every math node. Formulas the renderer
// rejects become placeholders; only cancellation stops the document.
func (c *GoldmarkConverter) renderMath(ctx context.Context, doc ast.Node) error {
	for _, n := range MathNodes(doc) {
		var (
			tex     string
			display bool
			out     *string
		)
		switch n := n.(type) {
		case *MathBlock:
			tex, display, out = n.TeX, true, &n.Rendered
		case *MathInline:
			tex, out = n.TeX, &n.Rendered
		}

		rendered, err := c.math.Render(ctx, tex, display)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			rendered = katex.Placeholder(err, display)
		}
		*out = rendered
	}
	return nil
}
