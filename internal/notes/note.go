package notes

import (
	"fmt"
	"strings"

	"github.com/alnah/labnotes/internal/pipeline"
	"github.com/alnah/labnotes/internal/yamlutil"
)

// Metadata is the front matter of a note. Unknown keys are ignored.
type Metadata struct {
	Title  string   `yaml:"title"`
	Author string   `yaml:"author"`
	Date   string   `yaml:"date"`
	Tags   []string `yaml:"tags"`
}

// ParseMetadata decodes a front matter block, without its delimiters.
// Blank front matter yields empty Metadata.
func ParseMetadata(front string) (Metadata, error) {
	var m Metadata
	if strings.TrimSpace(front) == "" {
		return m, nil
	}
	if err := yamlutil.Unmarshal([]byte(front), &m); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	return m, nil
}

// Note is a loaded lab note.
type Note struct {
	ID       NoteID
	Metadata Metadata

	// Source is the whole decoded file, front matter included.
	Source string

	// Body is the Markdown after the front matter.
	Body string
}

// Parse splits decoded note content into metadata and body.
func Parse(id NoteID, content string) (*Note, error) {
	n := &Note{ID: id, Source: content, Body: content}

	front, body, ok := pipeline.SplitFrontMatter(content)
	if !ok {
		return n, nil
	}
	meta, err := ParseMetadata(front)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", id, err)
	}
	n.Metadata, n.Body = meta, body
	return n, nil
}

// Title is the front matter title, else the text of the first level one
// heading, else the note ID.
func (n *Note) Title() string {
	if n.Metadata.Title != "" {
		return n.Metadata.Title
	}
	if h := FirstHeading(n.Body); h != "" {
		return h
	}
	return n.ID.String()
}

// FirstHeading returns the text of the first ATX level one heading in a
// Markdown body, skipping fenced code.
func FirstHeading(body string) string {
	var fence string
	for line := range strings.Lines(body) {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(strings.TrimRight(rest, "#"))
		}
	}
	return ""
}
