// Package config loads key bindings and settings from the user's
// configuration directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/kk-code-lab/rmill/internal/command"
)

const (
	appName      = "rmill"
	keysFile     = "keys.yaml"
	settingsFile = "config.yaml"
	envFile      = "rmill.env"
)

// Config is everything read from the configuration directory.
type Config struct {
	Dir      string
	Keys     Keys
	Settings Settings
}

// Dir returns the configuration directory: $XDG_CONFIG_HOME/rmill, falling
// back to ~/.config/rmill.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appName)
	}
	return ""
}

// Load reads the configuration in dir, or in Dir() when dir is empty.
// Loading never fails: every problem falls back to defaults and is
// returned so the caller can log it once a logger exists.
func Load(dir string) (Config, []error) {
	if dir == "" {
		dir = Dir()
	}
	keys, problems := LoadKeys(filepath.Join(dir, keysFile))
	settings, settingsProblems := LoadSettings(filepath.Join(dir, settingsFile))
	problems = append(problems, settingsProblems...)
	problems = append(problems, settings.ApplyEnv(filepath.Join(dir, envFile), os.LookupEnv)...)
	return Config{Dir: dir, Keys: keys, Settings: settings}, problems
}

// Parser builds the command parser for the loaded bindings.
func (c Config) Parser() *command.Parser {
	return c.Keys.Parser()
}
