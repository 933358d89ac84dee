// Package dateutil formats the dates written in note front matter.
//
// Formats use tokens rather than Go reference times: YYYY, YY, MMMM, MMM,
// MM, M, DD and D. Text in brackets is kept literally, so "[Run of] D MMM"
// yields "Run of 5 Jan". Named presets cover the common cases.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a date format that cannot be used.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format strings from config files.
const MaxDateFormatLength = 50

// Presets are named formats, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// tokens are ordered longest first so "MMMM" wins over "MM".
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// inputLayouts are the date spellings recognized in front matter.
var inputLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Layout converts a preset name or token format to a Go time layout.
func Layout(format string) (string, error) {
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	for rest := format; rest != ""; {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := writeToken(&b, rest)
		rest = rest[n:]
	}
	return b.String(), nil
}

// writeToken writes the layout for the token at the start of s, or its
// first byte, and returns how many bytes it consumed.
func writeToken(b *strings.Builder, s string) int {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.layout)
			return len(t.token)
		}
	}
	b.WriteByte(s[0])
	return 1
}

// Format rewrites a front matter date with layout. Values that are not
// recognized dates, such as "spring 2024", are returned unchanged, as is
// any value when layout is empty.
func Format(value, layout string) string {
	if layout == "" {
		return value
	}
	trimmed := strings.TrimSpace(value)
	for _, in := range inputLayouts {
		if t, err := time.Parse(in, trimmed); err == nil {
			return t.Format(layout)
		}
	}
	return value
}
