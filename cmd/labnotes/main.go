// Command labnotes serves a directory of Markdown lab notes as web pages.
package main

import (
	"context"
	"fmt"
	"os"

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

// run dispatches to a subcommand and returns the exit code. Without a
// known subcommand the arguments are those of serve.
func run(ctx context.Context, args []string, env *cli.Environment) int {
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version":
			fmt.Fprintf(env.Stdout, "labnotes %s\n", Version)
			return cli.ExitSuccess
		case "help":
			return runHelp(args[1:], env)
		case "doctor":
			return runDoctorCmd(args[1:], env)
		case "serve":
			args = args[1:]
		}
	}
	return runServeCmd(ctx, args, env)
}
