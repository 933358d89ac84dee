package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/config"
	"github.com/alnah/labnotes/internal/hints"
	"github.com/alnah/labnotes/internal/server"
)

// PrintError writes err to w, followed by a hint when one applies.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(DefaultConfigName))
	case errors.Is(err, labnotes.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, server.ErrListen):
		return hints.ForAddressInUse()
	case errors.Is(err, server.ErrNotesDir):
		return hints.ForNotesDir()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
