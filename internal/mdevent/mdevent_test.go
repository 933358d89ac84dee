package mdevent

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/alnah/labnotes/internal/latex"
)

// ---------------------------------------------------------------------------
// TestEvents - Markdown to event sequences
// ---------------------------------------------------------------------------

func TestEvents(t *testing.T) {
	t.Parallel()

	var (
		p      = latex.Paragraph{}
		h1     = latex.Heading{Level: 1}
		ol3    = latex.List{Ordered: true, Start: 3}
		item   = latex.Item{}
		goFen  = latex.CodeBlock{Kind: latex.Fenced, Info: "go"}
		indent = latex.CodeBlock{Kind: latex.Indented}
		meta   = latex.MetadataBlock{Kind: latex.MetadataYAML}
		auto   = latex.Link{Type: latex.LinkAutolink, Destination: "https://example.org"}
		mail   = latex.Link{Type: latex.LinkEmail, Destination: "lab@example.org"}
		arxiv  = latex.Link{Type: latex.LinkInline, Destination: "https://arxiv.org/abs/2101.00001", Title: "arXiv:2101.00001"}
		html   = latex.HTMLBlock{}
	)

	tests := []struct {
		name  string
		input string
		want  []latex.Event
	}{
		{
			name:  "heading",
			input: "# Hi",
			want:  []latex.Event{latex.Start{Tag: h1}, latex.Text("Hi"), latex.End{Tag: h1}},
		},
		{
			name:  "tight ordered list has no paragraphs",
			input: "3. x",
			want: []latex.Event{
				latex.Start{Tag: ol3}, latex.Start{Tag: item}, latex.Text("x"),
				latex.End{Tag: item}, latex.End{Tag: ol3},
			},
		},
		{
			name:  "soft break",
			input: "a\nb",
			want: []latex.Event{
				latex.Start{Tag: p}, latex.Text("a"), latex.SoftBreak{}, latex.Text("b"), latex.End{Tag: p},
			},
		},
		{
			name:  "fenced code",
			input: "```go\nx := 1\n```",
			want:  []latex.Event{latex.Start{Tag: goFen}, latex.Text("x := 1\n"), latex.End{Tag: goFen}},
		},
		{
			name:  "indented code",
			input: "    x\n",
			want:  []latex.Event{latex.Start{Tag: indent}, latex.Text("x\n"), latex.End{Tag: indent}},
		},
		{
			name:  "math fence",
			input: "```math\na = b\n```",
			want:  []latex.Event{latex.DisplayMath("a = b\n")},
		},
		{
			name:  "inline math",
			input: "`$x^2$`",
			want:  []latex.Event{latex.Start{Tag: p}, latex.InlineMath("x^2"), latex.End{Tag: p}},
		},
		{
			name:  "inline code",
			input: "`ls -l`",
			want:  []latex.Event{latex.Start{Tag: p}, latex.Code("ls -l"), latex.End{Tag: p}},
		},
		{
			name:  "front matter",
			input: "---\ntitle: T\n---\n# Hi\n",
			want: []latex.Event{
				latex.Start{Tag: meta}, latex.Text("title: T\n"), latex.End{Tag: meta},
				latex.Start{Tag: h1}, latex.Text("Hi"), latex.End{Tag: h1},
			},
		},
		{
			name:  "autolink",
			input: "<https://example.org>",
			want: []latex.Event{
				latex.Start{Tag: p}, latex.Start{Tag: auto}, latex.Text("https://example.org"),
				latex.End{Tag: auto}, latex.End{Tag: p},
			},
		},
		{
			name:  "email autolink",
			input: "<lab@example.org>",
			want: []latex.Event{
				latex.Start{Tag: p}, latex.Start{Tag: mail}, latex.Text("lab@example.org"),
				latex.End{Tag: mail}, latex.End{Tag: p},
			},
		},
		{
			name:  "arxiv citation",
			input: "[arXiv:2101.00001]",
			want: []latex.Event{
				latex.Start{Tag: p}, latex.Start{Tag: arxiv}, latex.Text("arXiv:2101.00001"),
				latex.End{Tag: arxiv}, latex.End{Tag: p},
			},
		},
		{
			name:  "html block",
			input: "<div>\nhi\n</div>\n",
			want:  []latex.Event{latex.Start{Tag: html}, latex.HTML("<div>\nhi\n</div>\n"), latex.End{Tag: html}},
		},
		{
			name:  "thematic break",
			input: "***",
			want:  []latex.Event{latex.Rule{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := slices.Collect(Events(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Events(%q)\n got: %#v\nwant: %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvents_Footnotes(t *testing.T) {
	t.Parallel()

	src := "First[^b] then[^a].\n\n[^a]: Alpha.\n[^b]: Beta.\n"
	events := slices.Collect(Events(src))

	var refs, defs []string
	for _, ev := range events {
		switch ev := ev.(type) {
		case latex.FootnoteReference:
			refs = append(refs, ev.Name)
		case latex.Start:
			if d, ok := ev.Tag.(latex.FootnoteDefinition); ok {
				defs = append(defs, d.Name)
			}
		}
	}

	if !slices.Equal(refs, []string{"b", "a"}) {
		t.Errorf("references = %v, want [b a]", refs)
	}
	if !slices.Equal(defs, []string{"b", "a"}) {
		t.Errorf("definitions = %v, want [b a]", defs)
	}
}

func TestEvents_TaskList(t *testing.T) {
	t.Parallel()

	var markers []bool
	for ev := range Events("- [x] weigh\n- [ ] dissolve\n") {
		if m, ok := ev.(latex.TaskListMarker); ok {
			markers = append(markers, m.Checked)
		}
	}
	if !slices.Equal(markers, []bool{true, false}) {
		t.Errorf("markers = %v, want [true false]", markers)
	}
}

func TestEvents_StopsWhenConsumerStops(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("paragraph\n\n", 1000)
	n := 0
	for range Events(src) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("consumed %d events, want 2", n)
	}
}

// ---------------------------------------------------------------------------
// TestEvents_LaTeX - Markdown through the emitter
// ---------------------------------------------------------------------------

func body(t *testing.T, src string) string {
	t.Helper()

	out, err := latex.Render(Events(src))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return strings.TrimSuffix(strings.TrimPrefix(out, latex.Preamble), latex.Trailer)
}

func TestEvents_LaTeX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "heading",
			input: "# Hi",
			want:  "\\section*{Hi}\n",
		},
		{
			name:  "ordered list from 3",
			input: "3. x",
			want:  "\\begin{enumerate}\n\\setcounter{enumi}{3}\n\\item x\n\\end{enumerate}\n",
		},
		{
			name:  "table",
			input: "| a | b |\n|:--|--:|\n| 1 | 2 |",
			want:  "\\begin{center}\n\\begin{tabular}{lr}\na & b\\\\\n\\hline\n1 & 2\\\\\n\\end{tabular}\n\\end{center}\n",
		},
		{
			name:  "backslash escape",
			input: `a \* b`,
			want:  "\na * b",
		},
		{
			name:  "character references",
			input: "&amp; &#35;",
			want:  "\n& #",
		},
		{
			name:  "inline formatting",
			input: "*e* **s** ~~d~~",
			want:  "\n{\\em e} {\\bf s} \\sout{d}",
		},
		{
			name:  "image alt dropped",
			input: "![a plot](plot.png)",
			want:  "\n\\includegraphics{plot.png}\n",
		},
		{
			name:  "display math",
			input: "```math\nx = 1\n```",
			want:  "\\begin{align*}\nx = 1\n\\end{align*}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := body(t, tt.input); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvents_LaTeXFootnotes(t *testing.T) {
	t.Parallel()

	got := body(t, "One[^x] two[^y] again[^x].\n\n[^x]: X.\n[^y]: Y.\n")
	for _, want := range []string{
		`One\footnotemark[1] two\footnotemark[2] again\footnotemark[1].`,
		`\footnotetext[1]{`,
		`\footnotetext[2]{`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("body missing %q\n%s", want, got)
		}
	}
}

func TestEvents_WellFormed(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"---\ntitle: Full\n---",
		"# Title",
		"> quote with *emphasis* and [link](https://x.org \"t\")",
		"1. one\n2. two\n\n   para in item\n",
		"- [x] done\n- [ ] open",
		"| h |\n|---|\n| `c` |",
		"Footnote[^n] and `$a$` and <span>raw</span>.",
		"```math\nb\n```",
		"<div>\nblock\n</div>",
		"![alt *x*](i.png \"title\")",
		"[^n]: note",
	}, "\n\n")

	if _, err := latex.Render(Events(src)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}
