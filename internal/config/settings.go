package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/rmill/internal/cache"
	"github.com/kk-code-lab/rmill/internal/content"
	"github.com/kk-code-lab/rmill/internal/logging"
	"github.com/kk-code-lab/rmill/internal/watch"
)

// Colors names the theme colors. Values are tcell color names or #rrggbb.
type Colors struct {
	Main      string `yaml:"main"`
	Marked    string `yaml:"marked"`
	Highlight string `yaml:"highlight"`
	DirPath   string `yaml:"dir_path"`
}

// Settings is the contents of config.yaml after environment overrides.
type Settings struct {
	DirectoryCache  int           `yaml:"directory_cache"`
	PreviewCache    int           `yaml:"preview_cache"`
	Workers         int           `yaml:"workers"`
	PreviewLines    int           `yaml:"preview_lines"`
	PreviewDirLimit int           `yaml:"preview_dir_limit"`
	ImageSize       int           `yaml:"image_size"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
	LogLevel        string        `yaml:"log_level"`
	LogCapacity     int           `yaml:"log_capacity"`
	LogFile         string        `yaml:"log_file"`
	ShowHidden      bool          `yaml:"show_hidden"`
	UseTrash        bool          `yaml:"use_trash"`
	Opener          string        `yaml:"opener"`
	Editor          string        `yaml:"editor"`
	Colors          Colors        `yaml:"colors"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	preview := content.DefaultPreviewOptions()
	return Settings{
		DirectoryCache:  cache.DefaultDirectoryCapacity,
		PreviewCache:    cache.DefaultPreviewCapacity,
		PreviewLines:    preview.Lines,
		PreviewDirLimit: preview.DirLimit,
		ImageSize:       preview.ImageSize,
		WatchDebounce:   watch.DefaultDebounce,
		LogLevel:        "info",
		LogCapacity:     logging.DefaultCapacity,
		UseTrash:        true,
		Colors: Colors{
			Main:      "green",
			Marked:    "olive",
			Highlight: "red",
			DirPath:   "navy",
		},
	}
}

// PreviewOptions returns the preview bounds configured by s.
func (s Settings) PreviewOptions() content.PreviewOptions {
	return content.PreviewOptions{Lines: s.PreviewLines, DirLimit: s.PreviewDirLimit, ImageSize: s.ImageSize}
}

// LoadSettings reads path over the defaults. A missing file is not a
// problem; a malformed one yields the defaults and an error.
func LoadSettings(path string) (Settings, []error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, []error{fmt.Errorf("read %s: %w", path, err)}
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), []error{fmt.Errorf("parse %s: %w", path, err)}
	}
	problems := s.sanitize()
	return s, problems
}

// sanitize replaces out-of-range values with defaults.
func (s *Settings) sanitize() []error {
	d := DefaultSettings()
	var problems []error
	positive := func(name string, v *int, def int) {
		if *v <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive, got %d", name, *v))
			*v = def
		}
	}
	positive("directory_cache", &s.DirectoryCache, d.DirectoryCache)
	positive("preview_cache", &s.PreviewCache, d.PreviewCache)
	positive("preview_lines", &s.PreviewLines, d.PreviewLines)
	positive("preview_dir_limit", &s.PreviewDirLimit, d.PreviewDirLimit)
	positive("image_size", &s.ImageSize, d.ImageSize)
	positive("log_capacity", &s.LogCapacity, d.LogCapacity)
	if s.Workers < 0 {
		problems = append(problems, fmt.Errorf("workers must not be negative, got %d", s.Workers))
		s.Workers = 0
	}
	if s.WatchDebounce <= 0 {
		s.WatchDebounce = d.WatchDebounce
	}
	return problems
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RMILL_"

type override struct {
	name  string
	apply func(s *Settings, value string) error
}

func intOverride(name string, field func(*Settings) *int) override {
	return override{name: name, apply: func(s *Settings, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid integer %q", value)
		}
		*field(s) = n
		return nil
	}}
}

func boolOverride(name string, field func(*Settings) *bool) override {
	return override{name: name, apply: func(s *Settings, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		*field(s) = b
		return nil
	}}
}

func stringOverride(name string, field func(*Settings) *string) override {
	return override{name: name, apply: func(s *Settings, value string) error {
		*field(s) = value
		return nil
	}}
}

var overrides = []override{
	intOverride("DIRECTORY_CACHE", func(s *Settings) *int { return &s.DirectoryCache }),
	intOverride("PREVIEW_CACHE", func(s *Settings) *int { return &s.PreviewCache }),
	intOverride("WORKERS", func(s *Settings) *int { return &s.Workers }),
	intOverride("PREVIEW_LINES", func(s *Settings) *int { return &s.PreviewLines }),
	intOverride("PREVIEW_DIR_LIMIT", func(s *Settings) *int { return &s.PreviewDirLimit }),
	intOverride("IMAGE_SIZE", func(s *Settings) *int { return &s.ImageSize }),
	intOverride("LOG_CAPACITY", func(s *Settings) *int { return &s.LogCapacity }),
	{name: "WATCH_DEBOUNCE", apply: func(s *Settings, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		s.WatchDebounce = d
		return nil
	}},
	stringOverride("LOG_LEVEL", func(s *Settings) *string { return &s.LogLevel }),
	stringOverride("LOG_FILE", func(s *Settings) *string { return &s.LogFile }),
	stringOverride("OPENER", func(s *Settings) *string { return &s.Opener }),
	stringOverride("EDITOR", func(s *Settings) *string { return &s.Editor }),
	boolOverride("SHOW_HIDDEN", func(s *Settings) *bool { return &s.ShowHidden }),
	boolOverride("USE_TRASH", func(s *Settings) *bool { return &s.UseTrash }),
}

// ApplyEnv overrides s from envFile (a dotenv file, may be missing) and then
// from lookup, usually os.LookupEnv. Values that do not parse are reported
// and skipped.
func (s *Settings) ApplyEnv(envFile string, lookup func(string) (string, bool)) []error {
	var problems []error
	fileVars, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		problems = append(problems, fmt.Errorf("read %s: %w", envFile, err))
	}

	for _, o := range overrides {
		key := EnvPrefix + o.name
		value, ok := fileVars[key]
		if v, set := lookup(key); set {
			value, ok = v, true
		}
		if !ok {
			continue
		}
		if err := o.apply(s, strings.TrimSpace(value)); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", key, err))
		}
	}
	return append(problems, s.sanitize()...)
}
