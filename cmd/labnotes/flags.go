package main

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/labnotes/internal/cli"
	"github.com/alnah/labnotes/internal/config"
)

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    cli.CommonFlags
	addr      string
	light     bool
	math      string
	live      bool
	rateLimit float64

	// changed records the flags given on the command line, so that
	// defaults do not override the config file.
	changed map[string]bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stdout, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address, host:port")
	fs.BoolVar(&f.light, "light", false, "use the light theme")
	fs.StringVarP(&f.math, "math", "m", "", "math typesetting: client, browser")
	fs.BoolVar(&f.live, "live", false, "reload open pages when notes change")
	fs.Float64Var(&f.rateLimit, "rate-limit", 0, "requests per second per client (0 = unlimited)")
	cli.AddCommonFlags(fs, &f.common)

	fs.SetOutput(stderr)
	fs.Usage = func() { printServeUsage(stdout) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.changed = cli.Changed(fs)

	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags and returns positional args.
func parseDoctorFlags(args []string, stdout, stderr io.Writer) (*doctorFlags, []string, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")

	fs.SetOutput(stderr)
	fs.Usage = func() { printDoctorUsage(stdout) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// applyServeFlags merges command-line values into cfg. Flags win over the
// environment and the config file.
func applyServeFlags(f *serveFlags, args []string, cfg *config.Config) {
	if len(args) > 0 {
		cfg.Notes.Dir = args[0]
	}
	if f.changed["addr"] {
		cfg.Server.Addr = f.addr
	}
	if f.changed["light"] {
		cfg.Theme = config.ThemeDark
		if f.light {
			cfg.Theme = config.ThemeLight
		}
	}
	if f.changed["math"] {
		cfg.Math.Mode = f.math
	}
	if f.changed["live"] {
		cfg.Server.LiveReload = f.live
	}
	if f.changed["rate-limit"] {
		cfg.Server.RateLimit = f.rateLimit
	}
}
