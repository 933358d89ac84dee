package cli

import (
	"errors"
	"os"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/config"
	"github.com/alnah/labnotes/internal/dateutil"
	"github.com/alnah/labnotes/internal/server"
)

// Exit codes of the labnotes commands.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, address in use
	ExitBrowser = 4 // Browser/Chrome errors
)

// Sentinel errors for command operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input specified")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrDuplicateOutput  = errors.New("two inputs map to the same output file")
)

// ExitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, labnotes.ErrBrowserConnect) ||
		errors.Is(err, labnotes.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, server.ErrListen) ||
		errors.Is(err, server.ErrNotesDir) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrDuplicateOutput) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, labnotes.ErrEmptyMarkdown) ||
		errors.Is(err, labnotes.ErrInvalidFormat) ||
		errors.Is(err, labnotes.ErrInvalidTheme) ||
		errors.Is(err, labnotes.ErrInvalidAssetPath) ||
		errors.Is(err, labnotes.ErrStyleNotFound) ||
		errors.Is(err, labnotes.ErrTemplateNotFound) {
		return ExitUsage
	}

	return ExitGeneral
}
