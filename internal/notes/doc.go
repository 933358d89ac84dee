// Package notes finds and loads lab notes: Markdown files, optionally
// headed by YAML front matter, kept side by side in one directory.
//
// A note is addressed by its NoteID, the file name without ".md". IDs are
// restricted to ASCII letters, digits, '-' and '_', so an ID can never name
// a path outside the directory.
package notes
