package main

import (
	"fmt"
	"io"

	"github.com/alnah/labnotes/internal/cli"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: labnotes [serve] [dir] [flags]")
	fmt.Fprintln(w, "       labnotes <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Serve a notes directory (default)")
	fmt.Fprintln(w, "  doctor     Check the system for browser math and the notes directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'labnotes help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: labnotes [serve] [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the notes of dir as web pages. index.md is the home page;")
	fmt.Fprintln(w, "every other note is served at /<name>.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  dir    Notes directory (default: notes.dir from config, or .)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8000)")
	fmt.Fprintln(w, "      --live                Reload open pages when notes change")
	fmt.Fprintln(w, "      --rate-limit <f>      Requests per second per client (0 = unlimited)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --light               Use the light theme")
	fmt.Fprintln(w, "  -m, --math <mode>         Math typesetting: client, browser")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show settings and GOMAXPROCS")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: labnotes doctor [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome is available for browser math and that the")
	fmt.Fprintln(w, "notes directory can be served.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *cli.Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return cli.ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: labnotes version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: labnotes help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return cli.ExitUsage
	}
	return cli.ExitSuccess
}
