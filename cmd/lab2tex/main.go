// Command lab2tex converts Markdown lab notes to LaTeX documents, or to
// standalone HTML pages with --format html.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/labnotes/internal/cli"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := cli.NotifyContext(context.Background())
	code := run(ctx, os.Args[1:], cli.DefaultEnv())
	stop()
	os.Exit(code)
}

// run parses args, converts and returns the exit code.
func run(ctx context.Context, args []string, env *cli.Environment) int {
	flags, inputs, err := parseConvertFlags(args, env.Stdout, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return cli.ExitSuccess
	}
	if err != nil {
		cli.PrintError(env.Stderr, fmt.Errorf("%w: %v", cli.ErrUsage, err))
		return cli.ExitUsage
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "lab2tex %s\n", Version)
		return cli.ExitSuccess
	}

	cli.SetMaxProcs(flags.common.Verbose, env.Stderr)

	if err := runConvert(ctx, inputs, flags, env); err != nil {
		cli.PrintError(env.Stderr, err)
		return cli.ExitCodeFor(err)
	}
	return cli.ExitSuccess
}
