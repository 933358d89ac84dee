// Package latex translates a stream of Markdown structural events into a
// LaTeX document.
//
// The emitter is single-pass: it pulls one Event at a time from an
// iter.Seq and writes a fixed LaTeX fragment for it. A handful of events
// need running state that a per-node emitter would get wrong:
//
//   - whether the last write ended in a newline, so block commands get
//     exactly one separating line break
//   - the column count of the open table and the position inside the
//     current row, so cells are joined with " & " and rows end in \\
//   - a footnote name to number table, shared by references and
//     definitions and numbered in order of first appearance
//
// Image alt text has no LaTeX rendering; everything between an Image start
// and its matching end is consumed with a depth counter and dropped.
//
// Event mapping:
//
//	Paragraph            blank line
//	Heading 1..6         \section* \subsection* \subsubsection* \paragraph \subparagraph \subsubparagraph
//	Table                center + tabular
//	BlockQuote           quotation
//	CodeBlock            minted
//	List                 enumerate / itemize
//	Emphasis             {\em }
//	Strong               {\bf }
//	Strikethrough        \sout{}
//	Link                 \href{}{}
//	Image                \includegraphics{}
//	FootnoteReference    \footnotemark[N]
//	FootnoteDefinition   \footnotetext[N]{}
//	HTMLBlock            verbatim
//	MetadataBlock        comment
package latex
