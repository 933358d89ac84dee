// Package cli holds what the labnotes commands share: the injectable
// environment, config loading, exit codes and error reporting.
package cli

import (
	"io"
	"os"
	"strings"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// Environ returns the process environment in os.Environ form.
	Environ func() []string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
	}
}

func (e *Environment) environ() []string {
	if e.Environ == nil {
		return nil
	}
	return e.Environ()
}

// Getenv returns the value of the variable name, or "" when unset.
func (e *Environment) Getenv(name string) string {
	for _, kv := range e.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k == name {
			return v
		}
	}
	return ""
}
