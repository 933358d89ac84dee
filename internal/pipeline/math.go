package pipeline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MathLanguage is the fenced code block info string that marks display math.
const MathLanguage = "math"

// KindMathBlock is the node kind of a display formula.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// KindMathInline is the node kind of an inline formula.
var KindMathInline = ast.NewNodeKind("MathInline")

// MathBlock is a display formula written as a ```math fenced block.
type MathBlock struct {
	ast.BaseBlock

	// TeX is the formula source.
	TeX string

	// Rendered is the HTML produced for the formula, filled in before the
	// document is rendered. Empty means it was never rendered.
	Rendered string
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"TeX": n.TeX}, nil)
}

// MathInline is an inline formula written as a code span `$...$`.
type MathInline struct {
	ast.BaseInline

	TeX      string
	Rendered string
}

// Kind implements ast.Node.
func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

// Dump implements ast.Node.
func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"TeX": n.TeX}, nil)
}

// mathTransformer replaces math fences and `$...$` code spans with math
// nodes after parsing.
type mathTransformer struct{}

func (mathTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var replace [][2]ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock:
			if string(n.Language(source)) == MathLanguage {
				replace = append(replace, [2]ast.Node{n, &MathBlock{TeX: blockText(n, source)}})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if tex, ok := inlineMath(codeSpanText(n, source)); ok {
				replace = append(replace, [2]ast.Node{n, &MathInline{TeX: tex}})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, r := range replace {
		old, repl := r[0], r[1]
		if parent := old.Parent(); parent != nil {
			parent.ReplaceChild(parent, old, repl)
		}
	}
}

// inlineMath reports whether a code span holds a formula and returns it.
// The span must start and end with a dollar sign; "$" alone is code.
func inlineMath(code string) (string, bool) {
	if len(code) < 2 || code[0] != '$' || code[len(code)-1] != '$' {
		return "", false
	}
	return code[1 : len(code)-1], true
}

// blockText joins the raw lines of a block node.
func blockText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// codeSpanText returns the content of a code span as goldmark normalized it.
func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}

// mathHTMLRenderer writes the pre-rendered HTML of math nodes.
type mathHTMLRenderer struct{}

func (mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, renderMathBlock)
	reg.Register(KindMathInline, renderMathInline)
}

func renderMathBlock(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(n.(*MathBlock).Rendered)
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

func renderMathInline(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(n.(*MathInline).Rendered)
	}
	return ast.WalkSkipChildren, nil
}

// Math is a goldmark extension that recognizes ```math blocks and `$...$`
// code spans.
var Math goldmark.Extender = mathExtension{}

type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(mathTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(mathHTMLRenderer{}, 100),
	))
}

// MathNodes returns the math nodes of doc in document order.
func MathNodes(doc ast.Node) []ast.Node {
	var nodes []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && (n.Kind() == KindMathBlock || n.Kind() == KindMathInline) {
			nodes = append(nodes, n)
		}
		return ast.WalkContinue, nil
	})
	return nodes
}
