package main

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/cli"
	"github.com/alnah/labnotes/internal/config"
)

// convertFlags holds all flags of lab2tex.
type convertFlags struct {
	common  cli.CommonFlags
	output  string
	workers int
	format  string
	light   bool
	version bool

	changed map[string]bool
}

// parseConvertFlags parses flags and returns the input files.
func parseConvertFlags(args []string, stdout, stderr io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("lab2tex", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (one input) or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.format, "format", "f", labnotes.FormatLaTeX, "output format: latex, html")
	fs.BoolVar(&f.light, "light", false, "use the light theme for html")
	fs.BoolVar(&f.version, "version", false, "show version information")
	cli.AddCommonFlags(fs, &f.common)

	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stdout) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.changed = cli.Changed(fs)

	return f, fs.Args(), nil
}

// applyConvertFlags merges command-line values into cfg. Flags win over
// the environment and the config file.
func applyConvertFlags(f *convertFlags, cfg *config.Config) {
	if f.changed["workers"] {
		cfg.LaTeX.Workers = f.workers
	}
	if f.changed["light"] {
		cfg.Theme = config.ThemeDark
		if f.light {
			cfg.Theme = config.ThemeLight
		}
	}
}
