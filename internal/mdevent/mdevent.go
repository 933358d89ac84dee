// Package mdevent parses lab notes Markdown and presents the document as
// the flat Start/End event sequence consumed by package latex.
//
// Parsing is done up front by goldmark; the events themselves are produced
// on demand while the consumer pulls, so a consumer that stops early stops
// the walk.
package mdevent

import (
	"iter"
	"strings"
	"sync"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/labnotes/internal/latex"
	"github.com/alnah/labnotes/internal/pipeline"
)

var defaultParser = sync.OnceValue(pipeline.NewParser)

// Events parses source, including an optional YAML front matter block, and
// returns its events.
func Events(source string) iter.Seq[latex.Event] {
	return EventsWith(defaultParser(), source)
}

// EventsWith is Events with a caller-supplied parser. The parser must
// include the pipeline math extension for formulas to be recognized.
func EventsWith(p parser.Parser, source string) iter.Seq[latex.Event] {
	front, body, hasFront := pipeline.SplitFrontMatter(source)

	return func(yield func(latex.Event) bool) {
		if hasFront {
			meta := latex.MetadataBlock{Kind: latex.MetadataYAML}
			if !yield(latex.Start{Tag: meta}) || !yield(latex.Text(front)) || !yield(latex.End{Tag: meta}) {
				return
			}
		}

		src := []byte(body)
		doc := pipeline.Parse(p, src)
		w := &walker{
			source:    src,
			footnotes: footnoteNames(doc),
			yield:     yield,
		}
		w.node(doc)
	}
}

// footnoteNames maps goldmark's footnote indexes back to the labels the
// author wrote.
func footnoteNames(doc ast.Node) map[int]string {
	names := make(map[int]string)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*extast.Footnote); ok && entering {
			names[fn.Index] = string(fn.Ref)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return names
}

// walker turns an AST into events. Every method returns false once the
// consumer has stopped pulling.
type walker struct {
	source    []byte
	footnotes map[int]string
	yield     func(latex.Event) bool
}

func (w *walker) emit(events ...latex.Event) bool {
	for _, ev := range events {
		if !w.yield(ev) {
			return false
		}
	}
	return true
}

func (w *walker) children(n ast.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if !w.node(c) {
			return false
		}
	}
	return true
}

// wrap emits the children of n between Start and End of tag.
func (w *walker) wrap(tag latex.Tag, n ast.Node) bool {
	return w.yield(latex.Start{Tag: tag}) && w.children(n) && w.yield(latex.End{Tag: tag})
}

func (w *walker) node(n ast.Node) bool {
	switch n := n.(type) {
	// Blocks
	case *ast.Paragraph:
		return w.wrap(latex.Paragraph{}, n)
	case *ast.TextBlock:
		// Tight list items: content without a paragraph.
		return w.children(n)
	case *ast.Heading:
		return w.wrap(latex.Heading{Level: n.Level}, n)
	case *ast.ThematicBreak:
		return w.yield(latex.Rule{})
	case *ast.CodeBlock:
		return w.codeBlock(latex.CodeBlock{Kind: latex.Indented}, n)
	case *ast.FencedCodeBlock:
		var info string
		if n.Info != nil {
			info = string(n.Info.Segment.Value(w.source))
		}
		return w.codeBlock(latex.CodeBlock{Kind: latex.Fenced, Info: info}, n)
	case *pipeline.MathBlock:
		return w.yield(latex.DisplayMath(n.TeX))
	case *ast.Blockquote:
		return w.wrap(latex.BlockQuote{}, n)
	case *ast.List:
		return w.wrap(latex.List{Ordered: n.IsOrdered(), Start: n.Start}, n)
	case *ast.ListItem:
		return w.wrap(latex.Item{}, n)
	case *ast.HTMLBlock:
		return w.htmlBlock(n)

	// GFM blocks
	case *extast.Table:
		alignments := make([]latex.Alignment, len(n.Alignments))
		for i, a := range n.Alignments {
			alignments[i] = alignment(a)
		}
		return w.wrap(latex.Table{Alignments: alignments}, n)
	case *extast.TableHeader:
		return w.wrap(latex.TableHead{}, n)
	case *extast.TableRow:
		return w.wrap(latex.TableRow{}, n)
	case *extast.TableCell:
		return w.wrap(latex.TableCell{}, n)
	case *extast.FootnoteList:
		return w.children(n)
	case *extast.Footnote:
		return w.wrap(latex.FootnoteDefinition{Name: string(n.Ref)}, n)

	// Inlines
	case *ast.Text:
		if !w.yield(latex.Text(inlineText(n.Segment.Value(w.source)))) {
			return false
		}
		switch {
		case n.HardLineBreak():
			return w.yield(latex.HardBreak{})
		case n.SoftLineBreak():
			return w.yield(latex.SoftBreak{})
		}
		return true
	case *ast.String:
		return w.yield(latex.Text(n.Value))
	case *ast.CodeSpan:
		return w.yield(latex.Code(codeSpanText(n, w.source)))
	case *pipeline.MathInline:
		return w.yield(latex.InlineMath(n.TeX))
	case *ast.Emphasis:
		if n.Level >= 2 {
			return w.wrap(latex.Strong{}, n)
		}
		return w.wrap(latex.Emphasis{}, n)
	case *ast.Link:
		return w.wrap(latex.Link{
			Type:        latex.LinkInline,
			Destination: string(n.Destination),
			Title:       string(n.Title),
		}, n)
	case *ast.AutoLink:
		label := string(n.Label(w.source))
		link := latex.Link{Type: latex.LinkAutolink, Destination: string(n.URL(w.source))}
		if n.AutoLinkType == ast.AutoLinkEmail {
			link = latex.Link{Type: latex.LinkEmail, Destination: label}
		}
		return w.emit(latex.Start{Tag: link}, latex.Text(label), latex.End{Tag: link})
	case *ast.Image:
		return w.wrap(latex.Image{Destination: string(n.Destination), Title: string(n.Title)}, n)
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(w.source))
		}
		return w.yield(latex.InlineHTML(sb.String()))

	// GFM inlines
	case *extast.Strikethrough:
		return w.wrap(latex.Strikethrough{}, n)
	case *extast.TaskCheckBox:
		return w.yield(latex.TaskListMarker{Checked: n.IsChecked})
	case *extast.FootnoteLink:
		return w.yield(latex.FootnoteReference{Name: w.footnotes[n.Index]})
	case *extast.FootnoteBacklink:
		return true
	}

	return w.children(n)
}

func (w *walker) codeBlock(tag latex.CodeBlock, n ast.Node) bool {
	return w.emit(latex.Start{Tag: tag}, latex.Text(lines(n, w.source)), latex.End{Tag: tag})
}

func (w *walker) htmlBlock(n *ast.HTMLBlock) bool {
	content := lines(n, w.source)
	if n.HasClosure() {
		content += string(n.ClosureLine.Value(w.source))
	}
	tag := latex.HTMLBlock{}
	return w.emit(latex.Start{Tag: tag}, latex.HTML(content), latex.End{Tag: tag})
}

func lines(n ast.Node, source []byte) string {
	var sb strings.Builder
	l := n.Lines()
	for i := 0; i < l.Len(); i++ {
		seg := l.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(source))
		case *ast.String:
			sb.Write(c.Value)
		}
	}
	return sb.String()
}

// inlineText resolves backslash escapes and character references, which
// goldmark leaves in text segments for its renderer.
func inlineText(v []byte) string {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

func alignment(a extast.Alignment) latex.Alignment {
	switch a {
	case extast.AlignLeft:
		return latex.AlignLeft
	case extast.AlignCenter:
		return latex.AlignCenter
	case extast.AlignRight:
		return latex.AlignRight
	}
	return latex.AlignNone
}
