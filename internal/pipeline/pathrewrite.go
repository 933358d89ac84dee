package pipeline

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths points the relative links of a rendered note at the
// server. Images and other files resolve under filesPrefix; links to
// sibling notes ("other.md", "other.md#part") become note URLs ("/other").
// An empty filesPrefix returns the HTML unchanged.
//
// Links that would leave the notes directory are left as written.
func RewriteRelativePaths(htmlContent, filesPrefix string) (string, error) {
	if filesPrefix == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rewriteNode(doc, filesPrefix)
	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Parse with a body context so the fragment is not wrapped.
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the tree back to a string. Fragments render their
// children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, filesPrefix string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", filesPrefix, false)
		case atom.A:
			rewriteAttr(n, "href", filesPrefix, true)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, filesPrefix)
	}
}

func rewriteAttr(n *html.Node, attrName, filesPrefix string, noteLinks bool) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		target, suffix := splitSuffix(attr.Val)
		clean, ok := cleanRelative(target)
		if !ok {
			continue
		}

		if noteLinks && strings.HasSuffix(clean, ".md") && !strings.Contains(clean, "/") {
			n.Attr[i].Val = "/" + url.PathEscape(strings.TrimSuffix(clean, ".md")) + suffix
			continue
		}
		n.Attr[i].Val = strings.TrimSuffix(filesPrefix, "/") + "/" + escapePath(clean) + suffix
	}
}

// isRelativePath reports whether p is a path relative to the note.
func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "/") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// splitSuffix separates a link target from its query and fragment.
func splitSuffix(p string) (target, suffix string) {
	if i := strings.IndexAny(p, "?#"); i != -1 {
		return p[:i], p[i:]
	}
	return p, ""
}

// cleanRelative normalizes a relative path and rejects one that climbs out
// of the notes directory.
func cleanRelative(p string) (string, bool) {
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	clean := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// escapePath percent-encodes each segment of a slash-separated path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
