package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxNoteSize bounds the size of a note file.
const MaxNoteSize = 8 << 20

// LabBook is a directory of notes.
type LabBook struct {
	dir  string
	fsys fs.FS
}

// New returns the lab book stored in dir. The directory is not read until
// a note is requested.
func New(dir string) *LabBook {
	return &LabBook{dir: dir, fsys: os.DirFS(dir)}
}

// Dir is the directory holding the notes.
func (b *LabBook) Dir() string { return b.dir }

// Path is the file path of the note id.
func (b *LabBook) Path(id NoteID) string {
	return filepath.Join(b.dir, id.Filename())
}

// Index loads the index note.
func (b *LabBook) Index() (*Note, error) {
	return b.Note(IndexID)
}

// Note loads the note id.
func (b *LabBook) Note(id NoteID) (*Note, error) {
	info, err := fs.Stat(b.fsys, id.Filename())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading note %s: %w", id, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if info.Size() > MaxNoteSize {
		return nil, fmt.Errorf("%w: %s (%d bytes, max %d)", ErrTooLarge, id, info.Size(), MaxNoteSize)
	}

	raw, err := fs.ReadFile(b.fsys, id.Filename())
	if err != nil {
		return nil, fmt.Errorf("reading note %s: %w", id, err)
	}
	content, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", id, err)
	}
	return Parse(id, content)
}

// List returns the IDs of the notes in the directory, sorted. Markdown
// files whose names are not valid IDs are skipped.
func (b *LabBook) List() ([]NoteID, error) {
	entries, err := fs.ReadDir(b.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	var ids []NoteID
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		stem, ok := strings.CutSuffix(e.Name(), ".md")
		if !ok {
			continue
		}
		if id, err := ParseNoteID(stem); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// IDFromPath returns the note ID for a file path inside the directory, as
// reported by a file watcher.
func (b *LabBook) IDFromPath(path string) (NoteID, bool) {
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(b.dir) {
		return "", false
	}
	stem, ok := strings.CutSuffix(filepath.Base(path), ".md")
	if !ok {
		return "", false
	}
	id, err := ParseNoteID(stem)
	return id, err == nil
}
