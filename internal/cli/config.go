package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/config"
	"github.com/alnah/labnotes/internal/dateutil"
)

// DefaultConfigName is looked up when neither --config nor LABNOTES_CONFIG
// names a config file. Its absence is not an error.
const DefaultConfigName = "labnotes"

// LoadConfig builds the settings of a command from the config file and
// the LABNOTES_* variables. nameOrPath comes from --config; when empty,
// LABNOTES_CONFIG is used, then DefaultConfigName. Environment warnings
// are written to Stderr unless quiet. The caller applies its flags and
// calls Validate.
func LoadConfig(nameOrPath string, env *Environment, quiet bool) (*config.Config, error) {
	if nameOrPath == "" {
		nameOrPath = env.Getenv(config.EnvConfig)
	}

	var cfg *config.Config
	if nameOrPath != "" {
		c, err := config.LoadConfig(nameOrPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = c
	} else {
		c, err := config.LoadConfig(DefaultConfigName)
		switch {
		case err == nil:
			cfg = c
		case errors.Is(err, config.ErrConfigNotFound):
			cfg = config.DefaultConfig()
		default:
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	for _, warning := range config.ApplyEnv(cfg, env.environ()) {
		if !quiet {
			fmt.Fprintf(env.Stderr, "warning: %s\n", warning)
		}
	}
	return cfg, nil
}

// ConverterOptions translates validated settings into converter options.
// Browser math is enabled only when html is true: LaTeX output keeps
// formulas as source.
func ConverterOptions(cfg *config.Config, html bool, logger *log.Logger) ([]labnotes.Option, error) {
	opts := []labnotes.Option{labnotes.WithLogger(logger)}

	if cfg.Theme != "" {
		opts = append(opts, labnotes.WithTheme(cfg.Theme))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, labnotes.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.DateFormat != "" {
		layout, err := dateutil.Layout(cfg.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("dateFormat: %w", err)
		}
		opts = append(opts, labnotes.WithDateLayout(layout))
	}
	if html && cfg.Math.Mode == config.MathBrowser {
		opts = append(opts, labnotes.WithBrowserMath())
		if cfg.Math.Timeout > 0 {
			opts = append(opts, labnotes.WithTimeout(cfg.Math.Timeout))
		}
		if cfg.Math.Script != "" {
			opts = append(opts, labnotes.WithKaTeXScript(cfg.Math.Script))
		}
	}
	return opts, nil
}
