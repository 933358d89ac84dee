package cli

import (
	"fmt"
	"io"

	"go.uber.org/automaxprocs/maxprocs"
)

// SetMaxProcs sizes GOMAXPROCS to the container CPU quota. Its log line
// goes to w only when verbose.
func SetMaxProcs(verbose bool, w io.Writer) {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}
