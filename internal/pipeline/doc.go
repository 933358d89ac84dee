// Package pipeline holds the Markdown processing shared by the HTML and
// LaTeX outputs:
//   - preprocessing (line endings, blank lines, ==highlight== markers)
//   - front matter splitting
//   - goldmark parsing with the math extension and arXiv/DOI citations
//   - HTML conversion with syntax highlighting and math rendering
//   - page assembly: template, CSS and script injection, link rewriting
//
// LaTeX emission lives in internal/latex, fed by internal/mdevent.
package pipeline
