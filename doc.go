// Package labnotes renders lab notes written in Markdown, either as themed
// HTML pages or as standalone LaTeX documents.
//
// # Quick Start
//
//	conv, err := labnotes.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, labnotes.Input{
//	    Markdown: "# Hello\n\n`$E = mc^2$`",
//	    Format:   labnotes.FormatLaTeX,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.tex", result.LaTeX, 0o644)
//
// # Conversion Pipeline
//
// Both formats share the same front end:
//
//  1. Markdown preprocessing (line endings, blank lines, ==highlight== for HTML)
//  2. Parsing via Goldmark (GFM, footnotes, `$math$`, arXiv and DOI citations)
//
// HTML output then renders formulas with the configured math renderer and
// wraps the note in the page template with the theme stylesheet. LaTeX
// output walks the document as a stream of events and writes a complete
// article.
//
// # Math
//
// Formulas are typeset by KaTeX. By default the page loads KaTeX from its
// CDN and typesets in the reader's browser. WithBrowserMath typesets on the
// server with headless Chrome instead and falls back to the client when no
// browser can be started. A formula KaTeX rejects is shown as a
// highlighted error marker; the rest of the note still renders.
//
// # Parallel Processing
//
// A Converter is safe for concurrent use. ConverterPool bounds the number
// of converters, and so of browsers, used by batch conversion:
//
//	pool := labnotes.NewConverterPool(4, labnotes.WithBrowserMath())
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Browser Requirements
//
// Server-side math requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run (~/.cache/rod/browser/). Set ROD_BROWSER_BIN
// to use a specific binary and ROD_NO_SANDBOX=1 inside containers.
package labnotes
