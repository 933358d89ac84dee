// Package katex renders TeX formulas to HTML.
//
// Two renderers are provided. ClientRenderer leaves the work to the reader's
// browser: it emits delimited TeX that KaTeX's auto-render extension picks
// up on page load. BrowserRenderer runs KaTeX ahead of time inside headless
// Chrome (go-rod) so the served page needs no JavaScript.
//
// A formula KaTeX rejects is not fatal to the page. Callers turn the error
// into a visible marker with Placeholder.
package katex
