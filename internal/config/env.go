package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "LABNOTES_"

// Environment variables recognized by ApplyEnv. LABNOTES_CONFIG is read
// by the commands to pick the config file.
const (
	EnvConfig      = "LABNOTES_CONFIG"
	EnvDir         = "LABNOTES_DIR"
	EnvAddr        = "LABNOTES_ADDR"
	EnvTheme       = "LABNOTES_THEME"
	EnvMath        = "LABNOTES_MATH"
	EnvMathTimeout = "LABNOTES_MATH_TIMEOUT"
	EnvKaTeXScript = "LABNOTES_KATEX_SCRIPT"
	EnvLiveReload  = "LABNOTES_LIVE_RELOAD"
	EnvRateLimit   = "LABNOTES_RATE_LIMIT"
	EnvOutputDir   = "LABNOTES_OUTPUT_DIR"
	EnvWorkers     = "LABNOTES_WORKERS"
	EnvDateFormat  = "LABNOTES_DATE_FORMAT"
)

var knownEnvVars = map[string]bool{
	EnvConfig: true, EnvDir: true, EnvAddr: true, EnvTheme: true,
	EnvMath: true, EnvMathTimeout: true, EnvKaTeXScript: true, EnvLiveReload: true,
	EnvRateLimit: true, EnvOutputDir: true, EnvWorkers: true,
	EnvDateFormat: true,
}

// ApplyEnv overrides cfg with the LABNOTES_* variables found in environ,
// given in os.Environ form. Unparseable values are skipped. It returns a
// warning for each skipped value and for each unknown LABNOTES_ variable.
func ApplyEnv(cfg *Config, environ []string) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, kv := range environ {
		name, value, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if !knownEnvVars[name] {
			warn("unknown environment variable %s (typo?)", name)
			continue
		}
		if value == "" {
			continue
		}

		switch name {
		case EnvDir:
			cfg.Notes.Dir = value
		case EnvAddr:
			cfg.Server.Addr = value
		case EnvTheme:
			cfg.Theme = strings.ToLower(value)
		case EnvMath:
			cfg.Math.Mode = strings.ToLower(value)
		case EnvKaTeXScript:
			cfg.Math.Script = value
		case EnvOutputDir:
			cfg.LaTeX.OutputDir = value
		case EnvDateFormat:
			cfg.DateFormat = value
		case EnvMathTimeout:
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				warn("ignoring %s=%q: want a positive duration", name, value)
				continue
			}
			cfg.Math.Timeout = d
		case EnvLiveReload:
			b, err := strconv.ParseBool(value)
			if err != nil {
				warn("ignoring %s=%q: want true or false", name, value)
				continue
			}
			cfg.Server.LiveReload = b
		case EnvRateLimit:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				warn("ignoring %s=%q: want a non-negative number", name, value)
				continue
			}
			cfg.Server.RateLimit = f
		case EnvWorkers:
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				warn("ignoring %s=%q: want a non-negative integer", name, value)
				continue
			}
			cfg.LaTeX.Workers = n
		}
	}
	return warnings
}
