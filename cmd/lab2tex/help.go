package main

import (
	"fmt"
	"io"
)

// printUsage prints usage for lab2tex.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lab2tex <input.md>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown lab notes to LaTeX. A single input without -o is")
	fmt.Fprintln(w, "written to standard output; several inputs are converted in parallel")
	fmt.Fprintln(w, "next to their sources, or into the -o directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (one input) or directory")
	fmt.Fprintln(w, "  -f, --format <fmt>        Output format: latex, html (default latex)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto, max 8)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "HTML:")
	fmt.Fprintln(w, "      --light               Use the light theme")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w, "      --version             Show version information")
}
