package latex

// Event is one unit of parsed Markdown. The set of implementations is
// closed; a type switch over Event in this package covers every variant.
type Event interface {
	isEvent()
}

// Start opens the region described by Tag.
type Start struct{ Tag Tag }

// End closes the region opened by the matching Start.
type End struct{ Tag Tag }

// Text is literal prose or code block content.
type Text string

// Code is an inline code span.
type Code string

// InlineMath is a formula rendered inside the running text.
type InlineMath string

// DisplayMath is a formula rendered on its own lines.
type DisplayMath string

// HTML is raw block-level HTML.
type HTML string

// InlineHTML is a raw HTML fragment inside a paragraph.
type InlineHTML string

// SoftBreak is a line break inside a paragraph that is not significant.
type SoftBreak struct{}

// HardBreak is a forced line break.
type HardBreak struct{}

// Rule is a thematic break.
type Rule struct{}

// FootnoteReference marks a use of the footnote called Name.
type FootnoteReference struct{ Name string }

// TaskListMarker is the checkbox at the start of a task list item.
type TaskListMarker struct{ Checked bool }

func (Start) isEvent()             {}
func (End) isEvent()               {}
func (Text) isEvent()              {}
func (Code) isEvent()              {}
func (InlineMath) isEvent()        {}
func (DisplayMath) isEvent()       {}
func (HTML) isEvent()              {}
func (InlineHTML) isEvent()        {}
func (SoftBreak) isEvent()         {}
func (HardBreak) isEvent()         {}
func (Rule) isEvent()              {}
func (FootnoteReference) isEvent() {}
func (TaskListMarker) isEvent()    {}

// Tag describes a structural region delimited by Start and End events.
type Tag interface {
	kind() tagKind
}

type tagKind int

const (
	kindParagraph tagKind = iota
	kindHeading
	kindTable
	kindTableHead
	kindTableRow
	kindTableCell
	kindBlockQuote
	kindCodeBlock
	kindList
	kindItem
	kindEmphasis
	kindStrong
	kindStrikethrough
	kindLink
	kindImage
	kindFootnoteDefinition
	kindHTMLBlock
	kindMetadataBlock
)

var tagKindNames = [...]string{
	kindParagraph:          "Paragraph",
	kindHeading:            "Heading",
	kindTable:              "Table",
	kindTableHead:          "TableHead",
	kindTableRow:           "TableRow",
	kindTableCell:          "TableCell",
	kindBlockQuote:         "BlockQuote",
	kindCodeBlock:          "CodeBlock",
	kindList:               "List",
	kindItem:               "Item",
	kindEmphasis:           "Emphasis",
	kindStrong:             "Strong",
	kindStrikethrough:      "Strikethrough",
	kindLink:               "Link",
	kindImage:              "Image",
	kindFootnoteDefinition: "FootnoteDefinition",
	kindHTMLBlock:          "HTMLBlock",
	kindMetadataBlock:      "MetadataBlock",
}

func (k tagKind) String() string { return tagKindNames[k] }

// Alignment is the horizontal alignment of a table column.
type Alignment int

// Column alignments. AlignNone renders like AlignLeft.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// CodeBlockKind distinguishes fenced from indented code blocks.
type CodeBlockKind int

const (
	Fenced CodeBlockKind = iota
	Indented
)

// LinkType records how a link was written in the source.
type LinkType int

const (
	LinkInline LinkType = iota
	LinkReference
	LinkAutolink
	LinkEmail
)

// MetadataKind is the syntax of a metadata block.
type MetadataKind int

const (
	MetadataYAML MetadataKind = iota
	MetadataPluses
)

type (
	Paragraph struct{}

	// Heading levels run from 1 to 6.
	Heading struct{ Level int }

	// Table carries one alignment per declared column.
	Table struct{ Alignments []Alignment }

	TableHead struct{}
	TableRow  struct{}
	TableCell struct{}

	BlockQuote struct{}

	// CodeBlock.Info is the full info string of a fenced block; the
	// language is its first whitespace-delimited word.
	CodeBlock struct {
		Kind CodeBlockKind
		Info string
	}

	// List is ordered when Ordered is set, numbering from Start.
	List struct {
		Ordered bool
		Start   int
	}

	Item          struct{}
	Emphasis      struct{}
	Strong        struct{}
	Strikethrough struct{}

	Link struct {
		Type        LinkType
		Destination string
		Title       string
	}

	Image struct {
		Destination string
		Title       string
	}

	FootnoteDefinition struct{ Name string }

	HTMLBlock struct{}

	MetadataBlock struct{ Kind MetadataKind }
)

func (Paragraph) kind() tagKind          { return kindParagraph }
func (Heading) kind() tagKind            { return kindHeading }
func (Table) kind() tagKind              { return kindTable }
func (TableHead) kind() tagKind          { return kindTableHead }
func (TableRow) kind() tagKind           { return kindTableRow }
func (TableCell) kind() tagKind          { return kindTableCell }
func (BlockQuote) kind() tagKind         { return kindBlockQuote }
func (CodeBlock) kind() tagKind          { return kindCodeBlock }
func (List) kind() tagKind               { return kindList }
func (Item) kind() tagKind               { return kindItem }
func (Emphasis) kind() tagKind           { return kindEmphasis }
func (Strong) kind() tagKind             { return kindStrong }
func (Strikethrough) kind() tagKind      { return kindStrikethrough }
func (Link) kind() tagKind               { return kindLink }
func (Image) kind() tagKind              { return kindImage }
func (FootnoteDefinition) kind() tagKind { return kindFootnoteDefinition }
func (HTMLBlock) kind() tagKind          { return kindHTMLBlock }
func (MetadataBlock) kind() tagKind      { return kindMetadataBlock }
