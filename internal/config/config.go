package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	SessionsRoot string `toml:"sessions_root"`
	Output       string `toml:"output"`
	DBPath       string `toml:"db_path" validate:"required"`
	URLBase      string `toml:"url_base" validate:"required,url"`
	Jobs         int    `toml:"jobs" validate:"min=1,max=64"`
	FailFast     bool   `toml:"fail_fast"`
	LogLevel     string `toml:"log_level" validate:"oneof=trace debug info warn error disabled"`
}

var validate = validator.New()

// Load reads ~/.config/wwdc/config.toml on top of the defaults. Without a
// resolvable home directory the defaults are used as is and the database
// lives in the working directory.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:   "wwdc.db",
		URLBase:  "https://developer.apple.com",
		Jobs:     1,
		LogLevel: "info",
	}

	home, err := os.UserHomeDir()
	if err != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg.DBPath = filepath.Join(home, ".config", "wwdc", "wwdc.db")

	cfgPath := filepath.Join(home, ".config", "wwdc", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.SessionsRoot = expandHome(cfg.SessionsRoot, home)
	cfg.Output = expandHome(cfg.Output, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgPath, err)
	}

	return cfg, nil
}

// Validate checks field constraints; flag overrides should call it again.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Root picks the sessions root from the command line, falling back to the
// configured one.
func (c *Config) Root(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.SessionsRoot != "" {
		return c.SessionsRoot, nil
	}
	return "", errors.New("no sessions root given and sessions_root is not configured")
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
