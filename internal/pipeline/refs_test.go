package pipeline

import (
	"bytes"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

func TestResolveCitation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label   string
		want    Citation
		wantHit bool
	}{
		{
			label:   "arXiv:2101.00001",
			want:    Citation{"https://arxiv.org/abs/2101.00001", "arXiv:2101.00001"},
			wantHit: true,
		},
		{
			label:   "arxiv:1706.03762v5",
			want:    Citation{"https://arxiv.org/abs/1706.03762v5", "arXiv:1706.03762v5"},
			wantHit: true,
		},
		{
			label:   "arXiv:hep-th/9711200",
			want:    Citation{"https://arxiv.org/abs/hep-th/9711200", "arXiv:hep-th/9711200"},
			wantHit: true,
		},
		{
			label:   "math.GT/0309136",
			want:    Citation{"https://arxiv.org/abs/math.GT/0309136", "arXiv:math.GT/0309136"},
			wantHit: true,
		},
		{
			label:   "doi:10.1000/xyz123",
			want:    Citation{"https://dx.doi.org/10.1000/xyz123", "doi:10.1000/xyz123"},
			wantHit: true,
		},
		{
			label:   "10.1038/nphys1170",
			want:    Citation{"https://dx.doi.org/10.1038/nphys1170", "doi:10.1038/nphys1170"},
			wantHit: true,
		},
		{label: "arXiv:21.1"},
		{label: "see note"},
		{label: "doi:11.1000/x"},
	}

	for _, tt := range tests {
		got, ok := ResolveCitation(tt.label)
		if ok != tt.wantHit || got != tt.want {
			t.Errorf("ResolveCitation(%q) = (%+v, %v), want (%+v, %v)", tt.label, got, ok, tt.want, tt.wantHit)
		}
	}
}

func renderWithCitations(t *testing.T, src string) string {
	t.Helper()

	md := goldmark.New(goldmark.WithRendererOptions(html.WithXHTML()))
	source := []byte(src)
	doc := Parse(md.Parser(), source)

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestNewParseContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arxiv citation becomes a link",
			src:  "See [arXiv:2101.00001].",
			want: `<p>See <a href="https://arxiv.org/abs/2101.00001" title="arXiv:2101.00001">arXiv:2101.00001</a>.</p>` + "\n",
		},
		{
			name: "doi citation becomes a link",
			src:  "From [doi:10.1000/xyz].",
			want: `<p>From <a href="https://dx.doi.org/10.1000/xyz" title="doi:10.1000/xyz">doi:10.1000/xyz</a>.</p>` + "\n",
		},
		{
			name: "document definition wins",
			src:  "See [arXiv:2101.00001].\n\n[arXiv:2101.00001]: https://example.com/mirror\n",
			want: `<p>See <a href="https://example.com/mirror">arXiv:2101.00001</a>.</p>` + "\n",
		},
		{
			name: "ordinary brackets stay text",
			src:  "A [note] here.",
			want: "<p>A [note] here.</p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := renderWithCitations(t, tt.src); got != tt.want {
				t.Errorf("rendered = %q, want %q", got, tt.want)
			}
		})
	}
}
