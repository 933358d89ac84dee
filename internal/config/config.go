// Package config loads labnotes settings from YAML files and the
// environment. Precedence, highest first: command-line flags (applied by
// the commands), LABNOTES_* variables, the config file, DefaultConfig.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/labnotes/internal/dateutil"
	"github.com/alnah/labnotes/internal/fileutil"
	"github.com/alnah/labnotes/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Accepted enumeration values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	MathClient  = "client"
	MathBrowser = "browser"
)

// Limits.
const (
	MaxPathLength    = 4096
	MaxAddrLength    = 256
	MaxWorkers       = 8
	MaxMathTimeout   = 5 * time.Minute
	MaxRequestsPerIP = 10000
)

// Config holds every labnotes setting.
type Config struct {
	Notes      NotesConfig  `yaml:"notes"`
	Server     ServerConfig `yaml:"server"`
	Math       MathConfig   `yaml:"math"`
	LaTeX      LaTeXConfig  `yaml:"latex"`
	Assets     AssetsConfig `yaml:"assets"`
	Theme      string       `yaml:"theme"`      // "dark" or "light"
	DateFormat string       `yaml:"dateFormat"` // token format or preset; empty keeps dates as written
}

// NotesConfig locates the lab book.
type NotesConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr       string  `yaml:"addr"`
	LiveReload bool    `yaml:"liveReload"`
	RateLimit  float64 `yaml:"rateLimit"` // requests per second per client; 0 disables
	RateBurst  int     `yaml:"rateBurst"`
}

// MathConfig selects how formulas are typeset.
type MathConfig struct {
	Mode    string        `yaml:"mode"`    // "client" or "browser"
	Timeout time.Duration `yaml:"timeout"` // per page conversion, browser mode only
	Script  string        `yaml:"script"`  // KaTeX script URL for browser mode; empty uses the CDN
}

// LaTeXConfig configures lab2tex.
type LaTeXConfig struct {
	OutputDir string `yaml:"outputDir"` // empty writes next to the input
	Workers   int    `yaml:"workers"`   // 0 sizes the pool from GOMAXPROCS
}

// AssetsConfig overrides the embedded styles and page template.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Notes:  NotesConfig{Dir: "."},
		Server: ServerConfig{Addr: "127.0.0.1:8000", RateLimit: 20, RateBurst: 40},
		Math:   MathConfig{Mode: MathClient, Timeout: 10 * time.Second},
		Theme:  ThemeDark,
	}
}

// Validate checks enumerations, ranges and field lengths.
// LoadConfig calls it; callers building a Config by hand should too.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"notes.dir", c.Notes.Dir, MaxPathLength},
		{"latex.outputDir", c.LaTeX.OutputDir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"math.script", c.Math.Script, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	switch c.Theme {
	case "", ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("%w: theme %q (must be dark or light)", ErrInvalidValue, c.Theme)
	}

	switch c.Math.Mode {
	case "", MathClient, MathBrowser:
	default:
		return fmt.Errorf("%w: math.mode %q (must be client or browser)", ErrInvalidValue, c.Math.Mode)
	}
	if c.Math.Timeout < 0 || c.Math.Timeout > MaxMathTimeout {
		return fmt.Errorf("%w: math.timeout %v (must be between 0 and %v)", ErrInvalidValue, c.Math.Timeout, MaxMathTimeout)
	}

	if c.Server.RateLimit < 0 || c.Server.RateLimit > MaxRequestsPerIP {
		return fmt.Errorf("%w: server.rateLimit %v (must be between 0 and %d)", ErrInvalidValue, c.Server.RateLimit, MaxRequestsPerIP)
	}
	if c.Server.RateBurst < 0 {
		return fmt.Errorf("%w: server.rateBurst %d (must be >= 0)", ErrInvalidValue, c.Server.RateBurst)
	}

	if c.LaTeX.Workers < 0 || c.LaTeX.Workers > MaxWorkers {
		return fmt.Errorf("%w: latex.workers %d (must be between 0 and %d)", ErrInvalidValue, c.LaTeX.Workers, MaxWorkers)
	}

	if c.DateFormat != "" {
		if _, err := dateutil.Layout(c.DateFormat); err != nil {
			return fmt.Errorf("%w: dateFormat: %v", ErrInvalidValue, err)
		}
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig reads a config file over DefaultConfig. nameOrPath is either a
// path or a name searched with SearchPaths. A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order: the
// current directory, then the user config directory, each with .yaml and
// .yml extensions.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, 2*len(extensions))
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "labnotes", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
