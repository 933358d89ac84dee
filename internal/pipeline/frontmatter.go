package pipeline

import "strings"

const frontMatterDelim = "---"

// SplitFrontMatter separates a leading YAML front matter block from the
// Markdown body. The block must open on the first line with "---" and
// close with a line holding only "---" or "...". front excludes both
// delimiter lines. ok is false when there is no complete block, in which
// case body is content unchanged.
func SplitFrontMatter(content string) (front, body string, ok bool) {
	first, rest, found := strings.Cut(content, "\n")
	if !found || strings.TrimRight(first, " \t") != frontMatterDelim {
		return "", content, false
	}

	offset := 0
	for offset <= len(rest) {
		line, next, more := strings.Cut(rest[offset:], "\n")
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == frontMatterDelim || trimmed == "..." {
			front = rest[:offset]
			if more {
				body = next
			}
			return front, body, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", content, false
}
