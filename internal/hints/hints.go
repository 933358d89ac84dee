// Package hints adds actionable advice to CLI error messages.
// Every hint is formatted as "\n  hint: <text>" so it can be appended to an
// error line.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/labnotes/internal/fileutil"
)

// IsInContainer reports whether the process runs inside a container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect advises on headless Chrome failures in browser math
// mode.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		if inCI || IsInContainer() {
			hints = append(hints, "set ROD_BROWSER_BIN to the container's Chrome")
		} else {
			hints = append(hints, "set ROD_BROWSER_BIN to use a local Chrome")
		}
	}
	hints = append(hints, "or use --math client to typeset formulas in the reader's browser")

	return formatHints(hints)
}

// ForConfigNotFound suggests where a config file can live.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/labnotes.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), ".config/labnotes") || strings.Contains(filepathSlash(p), "/labnotes/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForNotesDir explains how to point the server at a notes directory.
func ForNotesDir() string {
	return format("pass the notes directory as the first argument or set LABNOTES_DIR")
}

// ForAddressInUse suggests another listen address.
func ForAddressInUse() string {
	return format("another process is listening there; choose a different --addr")
}

// ForOutputDirectory advises on output directory errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
