package latex

import "strings"

var specialReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`%`, `\%`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape quotes the LaTeX special characters in s so it typesets
// literally.
func Escape(s string) string {
	return specialReplacer.Replace(s)
}

// hrefSafe lists the bytes kept as-is in a URL. Everything else is
// percent-encoded.
var hrefSafe = func() (t [128]bool) {
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for _, c := range "-_.~!$&'()*+,;=:@/?#%" {
		t[c] = true
	}
	return t
}()

const hexDigits = "0123456789ABCDEF"

// EscapeHref prepares a link destination for the first argument of
// \href or \includegraphics: unsafe bytes are percent-encoded, then # and
// % are backslash-quoted so the argument survives being read by another
// macro.
func EscapeHref(dest string) string {
	var sb strings.Builder
	sb.Grow(len(dest))
	for i := 0; i < len(dest); i++ {
		c := dest[i]
		switch {
		case c == '%':
			sb.WriteString(`\%`)
		case c == '#':
			sb.WriteString(`\#`)
		case c < 128 && hrefSafe[c]:
			sb.WriteByte(c)
		default:
			sb.WriteString(`\%`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0f])
		}
	}
	return sb.String()
}
