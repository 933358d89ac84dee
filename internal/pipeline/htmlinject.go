package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrPageRender indicates the page template could not be executed.
var ErrPageRender = errors.New("page template rendering failed")

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, else after <body>,
// else at the start of the document. CSS content is sanitized so it cannot
// close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}
	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}
	if pos := afterBodyOpen(htmlContent, lowerHTML); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}
	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterBodyOpen returns the offset just past the <body ...> tag, or -1.
func afterBodyOpen(htmlContent, lowerHTML string) int {
	idx := strings.Index(lowerHTML, "<body")
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// InjectScript inserts a <script> element before </body>, or appends it
// when the document has no body end tag.
func InjectScript(htmlContent, script string) string {
	if script == "" {
		return htmlContent
	}
	block := "<script>" + strings.ReplaceAll(script, "</", `<\/`) + "</script>"
	if idx := strings.LastIndex(strings.ToLower(htmlContent), "</body>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}
	return htmlContent + block
}

// PageData is the input of the page template.
type PageData struct {
	Title  string
	Author string
	Date   string
	Tags   []string

	// Head holds trusted elements for <head>, such as math stylesheets.
	Head template.HTML

	// Body is the rendered note.
	Body template.HTML
}

// PageTemplate wraps rendered notes in a complete HTML document.
type PageTemplate struct {
	tmpl *template.Template
}

// NewPageTemplate parses tmplContent as an html/template.
func NewPageTemplate(tmplContent string) (*PageTemplate, error) {
	tmpl, err := template.New("page").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &PageTemplate{tmpl: tmpl}, nil
}

// Render executes the template with data.
func (p *PageTemplate) Render(ctx context.Context, data *PageData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}
