package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	flag "github.com/spf13/pflag"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/cli"
	"github.com/alnah/labnotes/internal/config"
	"github.com/alnah/labnotes/internal/notes"
	"github.com/alnah/labnotes/internal/server"
)

// runServeCmd executes the serve command and returns an exit code.
func runServeCmd(ctx context.Context, args []string, env *cli.Environment) int {
	flags, rest, err := parseServeFlags(args, env.Stdout, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return cli.ExitSuccess
	}
	if err != nil {
		cli.PrintError(env.Stderr, fmt.Errorf("%w: %v", cli.ErrUsage, err))
		return cli.ExitUsage
	}

	cli.SetMaxProcs(flags.common.Verbose, env.Stderr)

	if err := runServe(ctx, flags, rest, env); err != nil {
		cli.PrintError(env.Stderr, err)
		return cli.ExitCodeFor(err)
	}
	return cli.ExitSuccess
}

// runServe serves the notes directory until ctx is done.
func runServe(ctx context.Context, flags *serveFlags, args []string, env *cli.Environment) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: expected at most one notes directory, got %d", cli.ErrUsage, len(args))
	}

	cfg, err := cli.LoadConfig(flags.common.Config, env, flags.common.Quiet)
	if err != nil {
		return err
	}
	applyServeFlags(flags, args, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(env.Stderr, "", log.LstdFlags)
	if flags.common.Quiet {
		logger.SetOutput(io.Discard)
	}

	opts, err := cli.ConverterOptions(cfg, true, logger)
	if err != nil {
		return err
	}
	conv, err := labnotes.NewConverter(opts...)
	if err != nil {
		return fmt.Errorf("creating converter: %w", err)
	}
	defer func() { _ = conv.Close() }()

	srv, err := server.New(notes.New(cfg.Notes.Dir), conv, server.Options{
		Addr:       cfg.Server.Addr,
		LiveReload: cfg.Server.LiveReload,
		RateLimit:  cfg.Server.RateLimit,
		RateBurst:  cfg.Server.RateBurst,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx, func(addr net.Addr) {
		if flags.common.Quiet {
			return
		}
		fmt.Fprintf(env.Stdout, "Serving %s at http://%s/\n", cfg.Notes.Dir, addr)
		if flags.common.Verbose {
			printSettings(env.Stdout, cfg)
		}
	})
}

// printSettings shows the effective settings in verbose mode.
func printSettings(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "  theme:       %s\n", cfg.Theme)
	fmt.Fprintf(w, "  math:        %s\n", cfg.Math.Mode)
	fmt.Fprintf(w, "  live reload: %t\n", cfg.Server.LiveReload)
	if cfg.Server.RateLimit > 0 {
		fmt.Fprintf(w, "  rate limit:  %g req/s (burst %d)\n", cfg.Server.RateLimit, cfg.Server.RateBurst)
	} else {
		fmt.Fprintln(w, "  rate limit:  off")
	}
}
