package latex

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Sentinel errors for emission.
var (
	// ErrWrite wraps a failure of the underlying output sink.
	ErrWrite = errors.New("writing LaTeX output failed")

	// ErrUnbalanced reports an event stream whose Start and End events do
	// not nest. Well-formed parser output never triggers it.
	ErrUnbalanced = errors.New("unbalanced event stream")
)

// Preamble is written before the first event of every document.
const Preamble = "\\documentclass{article}\n\n" +
	"\\usepackage[normalem]{ulem}\n" +
	"\\usepackage{minted}\n" +
	"\\usepackage{graphicx}\n" +
	"\\usepackage{hyperref}\n" +
	"\\usepackage{amsmath}\n" +
	"\\usepackage{amssymb}\n" +
	"\\usepackage{verbatim}\n\n" +
	"\\setcounter{tocdepth}{6}\n" +
	"\\setcounter{secnumdepth}{6}\n\n" +
	"\\begin{document}\n"

// Trailer is written after the last event of every document.
const Trailer = "\\end{document}\n"

const (
	taskChecked   = `\makebox[0pt][l]{$\square$}\raisebox{.15ex}{\hspace{0.1em}$\checkmark$} `
	taskUnchecked = `\makebox[0pt][l]{$\square$} `
)

var sectionCommands = [...]string{
	1: "section*",
	2: "subsection*",
	3: "subsubsection*",
	4: "paragraph",
	5: "subparagraph",
	6: "subsubparagraph",
}

// Render translates events into a complete LaTeX document.
func Render(events iter.Seq[Event]) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, events); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write translates events into a complete LaTeX document written to w.
// Events are pulled one at a time; the sequence is never materialized.
// The first failed write to w ends the pass.
func Write(w io.Writer, events iter.Seq[Event]) error {
	next, stop := iter.Pull(events)
	defer stop()

	e := &emitter{
		next:       next,
		out:        &stickyWriter{w: w},
		endNewline: true,
		footnotes:  make(map[string]int),
	}
	return e.run()
}

// stickyWriter remembers the first write error and drops every write
// after it.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) WriteString(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

// emitter holds the state of one render. It is never shared.
type emitter struct {
	next func() (Event, bool)
	out  *stickyWriter

	// endNewline reports whether the last write ended in "\n".
	endNewline bool

	tableCells     int
	tableCellIndex int

	footnotes map[string]int

	open      []tagKind
	htmlDepth int
}

func (e *emitter) run() error {
	e.write(Preamble)
	for {
		ev, ok := e.next()
		if !ok {
			break
		}
		if err := e.event(ev); err != nil {
			return err
		}
		if e.out.err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, e.out.err)
		}
	}
	if n := len(e.open); n > 0 {
		return fmt.Errorf("%w: %s not closed", ErrUnbalanced, e.open[n-1])
	}
	e.write(Trailer)
	if e.out.err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, e.out.err)
	}
	return nil
}

// write emits s and tracks whether it ended a line.
func (e *emitter) write(s string) {
	if s == "" {
		return
	}
	e.out.WriteString(s)
	e.endNewline = s[len(s)-1] == '\n'
}

func (e *emitter) newline() {
	e.write("\n")
}

// lineStart writes a newline unless the output is already at one.
func (e *emitter) lineStart() {
	if !e.endNewline {
		e.newline()
	}
}

// footnote returns the number of name, allocating the next one on first
// sight.
func (e *emitter) footnote(name string) int {
	if n, ok := e.footnotes[name]; ok {
		return n
	}
	n := len(e.footnotes) + 1
	e.footnotes[name] = n
	return n
}

func (e *emitter) event(ev Event) error {
	switch ev := ev.(type) {
	case Start:
		return e.start(ev.Tag)
	case End:
		return e.end(ev.Tag)
	case Text:
		e.write(string(ev))
	case Code:
		e.write(`\mintinline{text}{`)
		e.write(string(ev))
		e.write("}")
	case InlineMath:
		e.write("$")
		e.write(string(ev))
		e.write("$")
	case DisplayMath:
		e.lineStart()
		e.write("\\begin{align*}\n")
		e.write(strings.TrimRight(string(ev), "\n"))
		e.write("\n\\end{align*}\n")
	case HTML:
		if e.htmlDepth > 0 {
			e.write(string(ev))
			break
		}
		e.write(`\begin{verbatim}`)
		e.write(string(ev))
		e.write(`\end{verbatim}`)
	case InlineHTML:
		e.write(string(ev))
	case SoftBreak:
		e.newline()
	case HardBreak:
		e.write(`\\`)
		e.newline()
	case Rule:
		e.lineStart()
		e.write("\\hline\n")
	case FootnoteReference:
		e.write(`\footnotemark[` + strconv.Itoa(e.footnote(ev.Name)) + "]")
	case TaskListMarker:
		if ev.Checked {
			e.write(taskChecked)
		} else {
			e.write(taskUnchecked)
		}
	default:
		panic(fmt.Sprintf("latex: unknown event %T", ev))
	}
	return nil
}

func (e *emitter) start(tag Tag) error {
	switch tag := tag.(type) {
	case Paragraph:
		if e.endNewline {
			e.write("\n")
		} else {
			e.write("\n\n")
		}
	case Heading:
		level := min(max(tag.Level, 1), 6)
		e.lineStart()
		e.write(`\` + sectionCommands[level] + "{")
	case Table:
		e.lineStart()
		e.write("\\begin{center}\n\\begin{tabular}{")
		var cols strings.Builder
		for _, a := range tag.Alignments {
			switch a {
			case AlignCenter:
				cols.WriteByte('c')
			case AlignRight:
				cols.WriteByte('r')
			default:
				cols.WriteByte('l')
			}
		}
		e.write(cols.String())
		e.write("}\n")
		e.tableCells = len(tag.Alignments)
		e.tableCellIndex = 0
	case TableHead, TableRow:
		e.tableCellIndex = 0
	case TableCell:
		if e.tableCellIndex >= e.tableCells {
			return fmt.Errorf("%w: row has more than %d cells", ErrUnbalanced, e.tableCells)
		}
	case BlockQuote:
		e.lineStart()
		e.write("\\begin{quotation}\n")
	case CodeBlock:
		e.lineStart()
		lang := ""
		if tag.Kind == Fenced {
			if fields := strings.Fields(tag.Info); len(fields) > 0 {
				lang = fields[0]
			}
		}
		if lang == "" {
			e.write("\\begin{minted}{text}\n")
		} else {
			e.write(`\begin{minted}{` + Escape(lang) + "}\n")
		}
	case List:
		e.lineStart()
		if !tag.Ordered {
			e.write("\\begin{itemize}\n")
			break
		}
		e.write("\\begin{enumerate}\n")
		if tag.Start != 1 {
			e.write(`\setcounter{enumi}{` + strconv.Itoa(tag.Start) + "}\n")
		}
	case Item:
		e.lineStart()
		e.write(`\item `)
	case Emphasis:
		e.write(`{\em `)
	case Strong:
		e.write(`{\bf `)
	case Strikethrough:
		e.write(`\sout{`)
	case Link:
		if tag.Type == LinkEmail {
			e.write(`\href{mailto:` + EscapeHref(tag.Destination) + "}{")
		} else {
			e.write(`\href{` + EscapeHref(tag.Destination) + "}{")
		}
	case Image:
		e.write(`\includegraphics{` + EscapeHref(tag.Destination) + "}")
		e.newline()
		return e.skipImage()
	case FootnoteDefinition:
		e.lineStart()
		e.write(`\footnotetext[` + strconv.Itoa(e.footnote(tag.Name)) + "]{")
	case HTMLBlock:
		e.lineStart()
		e.write("\\begin{verbatim}\n")
		e.htmlDepth++
	case MetadataBlock:
		e.lineStart()
		e.write("\\begin{comment}\n")
	default:
		panic(fmt.Sprintf("latex: unknown tag %T", tag))
	}
	e.open = append(e.open, tag.kind())
	return nil
}

func (e *emitter) end(tag Tag) error {
	n := len(e.open)
	if n == 0 {
		return fmt.Errorf("%w: End(%s) without Start", ErrUnbalanced, tag.kind())
	}
	if open := e.open[n-1]; open != tag.kind() {
		return fmt.Errorf("%w: End(%s) closes %s", ErrUnbalanced, tag.kind(), open)
	}
	e.open = e.open[:n-1]

	switch tag := tag.(type) {
	case Paragraph, TableRow:
	case Heading:
		e.write("}\n")
	case Table:
		e.write("\\end{tabular}\n\\end{center}\n")
	case TableHead:
		e.write("\\hline\n")
	case TableCell:
		e.tableCellIndex++
		if e.tableCellIndex == e.tableCells {
			e.write("\\\\\n")
		} else {
			e.write(" & ")
		}
	case BlockQuote:
		e.write("\\end{quotation}\n")
	case CodeBlock:
		e.write("\\end{minted}\n")
	case List:
		if tag.Ordered {
			e.write("\\end{enumerate}\n")
		} else {
			e.write("\\end{itemize}\n")
		}
	case Item:
		e.newline()
	case Emphasis, Strong, Strikethrough, Link:
		e.write("}")
	case FootnoteDefinition:
		e.write("}\n")
	case HTMLBlock:
		e.htmlDepth--
		e.lineStart()
		e.write("\\end{verbatim}\n")
	case MetadataBlock:
		e.lineStart()
		e.write("\\end{comment}\n")
	}
	return nil
}

// skipImage drops the alt text of an image: every event up to and
// including the End that matches the Image start. Footnote references in
// the alt text still take a number so later numbering does not shift.
func (e *emitter) skipImage() error {
	depth := 0
	for {
		ev, ok := e.next()
		if !ok {
			return fmt.Errorf("%w: Image not closed", ErrUnbalanced)
		}
		switch ev := ev.(type) {
		case Start:
			depth++
		case End:
			if depth == 0 {
				if ev.Tag.kind() != kindImage {
					return fmt.Errorf("%w: End(%s) closes Image", ErrUnbalanced, ev.Tag.kind())
				}
				return nil
			}
			depth--
		case FootnoteReference:
			e.footnote(ev.Name)
		}
	}
}
