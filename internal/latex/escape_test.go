package latex

import "testing"

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "go", "go"},
		{"hash", "c#", `c\#`},
		{"underscore", "my_lang", `my\_lang`},
		{"braces", "{x}", `\{x\}`},
		{"backslash", `\x`, `\textbackslash{}x`},
		{"tilde and caret", "~^", `\textasciitilde{}\textasciicircum{}`},
		{"dollar ampersand percent", "$&%", `\$\&\%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Escape(tt.input); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dest string
		want string
	}{
		{
			name: "plain url",
			dest: "https://example.com/path?a=1&b=2",
			want: "https://example.com/path?a=1&b=2",
		},
		{
			name: "space is percent-encoded",
			dest: "https://example.com/a b",
			want: `https://example.com/a\%20b`,
		},
		{
			name: "fragment is quoted",
			dest: "https://x.org/p#sec",
			want: `https://x.org/p\#sec`,
		},
		{
			name: "existing percent is quoted",
			dest: "https://x.org/a%20b",
			want: `https://x.org/a\%20b`,
		},
		{
			name: "non-ascii bytes",
			dest: "img/ü.png",
			want: `img/\%C3\%BC.png`,
		},
		{
			name: "braces are encoded",
			dest: "a{b}",
			want: `a\%7Bb\%7D`,
		},
		{
			name: "backslash is encoded",
			dest: `a\b`,
			want: `a\%5Cb`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := EscapeHref(tt.dest); got != tt.want {
				t.Errorf("EscapeHref(%q) = %q, want %q", tt.dest, got, tt.want)
			}
		})
	}
}
