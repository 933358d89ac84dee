package pipeline

import (
	"regexp"

	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// Bracketed citations such as [arXiv:2101.00001] or [doi:10.1000/xyz] are
// resolved as if the document defined them as link references.
var (
	newArxivRef = regexp.MustCompile(`^ar[xX]iv:([0-9]{4}[.][0-9]{4,}(v[0-9]+)?)$`)
	oldArxivRef = regexp.MustCompile(`^(ar[xX]iv:)?([a-zA-Z.-]+/[0-9]{7}(v[0-9]+)?)$`)
	doiRef      = regexp.MustCompile(`^(doi:)?(10[.][0-9.]+/[0-9a-zA-Z()._-]+)$`)

	// bracketLabel finds candidate labels: the content of every [...] that
	// does not itself contain brackets.
	bracketLabel = regexp.MustCompile(`\[([^\[\]\n]+)\]`)

	// definedLabel finds link reference definitions.
	definedLabel = regexp.MustCompile(`(?m)^ {0,3}\[([^\[\]\n]+)\]:`)
)

// Citation is the link a citation label resolves to.
type Citation struct {
	Destination string
	Title       string
}

// ResolveCitation maps an arXiv or DOI citation label to its link.
func ResolveCitation(label string) (Citation, bool) {
	if m := newArxivRef.FindStringSubmatch(label); m != nil {
		return Citation{
			Destination: "https://arxiv.org/abs/" + m[1],
			Title:       "arXiv:" + m[1],
		}, true
	}
	if m := oldArxivRef.FindStringSubmatch(label); m != nil {
		return Citation{
			Destination: "https://arxiv.org/abs/" + m[2],
			Title:       "arXiv:" + m[2],
		}, true
	}
	if m := doiRef.FindStringSubmatch(label); m != nil {
		return Citation{
			Destination: "https://dx.doi.org/" + m[2],
			Title:       "doi:" + m[2],
		}, true
	}
	return Citation{}, false
}

// NewParseContext returns a parser context preloaded with a reference for
// every citation label in source that the document does not define
// itself.
func NewParseContext(source []byte) parser.Context {
	pc := parser.NewContext()

	defined := make(map[string]bool)
	for _, m := range definedLabel.FindAllSubmatch(source, -1) {
		defined[util.ToLinkReference(m[1])] = true
	}

	seen := make(map[string]bool)
	for _, m := range bracketLabel.FindAllSubmatch(source, -1) {
		key := util.ToLinkReference(m[1])
		if defined[key] || seen[key] {
			continue
		}
		seen[key] = true

		cite, ok := ResolveCitation(string(m[1]))
		if !ok {
			continue
		}
		pc.AddReference(parser.NewReference(m[1], []byte(cite.Destination), []byte(cite.Title)))
	}
	return pc
}
