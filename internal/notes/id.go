package notes

import "fmt"

// MaxIDLength is the longest accepted NoteID, in bytes.
const MaxIDLength = 128

// IndexID names the note served at the root of a lab book.
const IndexID NoteID = "index"

// NoteID identifies a note. The zero value is not a valid ID; obtain one
// from ParseNoteID.
type NoteID string

// ParseNoteID validates s as a note identifier.
func ParseNoteID(s string) (NoteID, error) {
	if len(s) < 1 || len(s) > MaxIDLength {
		return "", fmt.Errorf("%w: got %d", ErrInvalidLength, len(s))
	}
	for i := 0; i < len(s); i++ {
		if !idByte(s[i]) {
			return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidCharacter, s[i], i)
		}
	}
	return NoteID(s), nil
}

func idByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return c == '-' || c == '_'
}

func (id NoteID) String() string { return string(id) }

// Filename is the name of the file holding the note.
func (id NoteID) Filename() string { return string(id) + ".md" }
