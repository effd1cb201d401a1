package gotdop

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Color modes of Config.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
	ColorHTML   = "html"
)

var supportedColors = []string{ColorAuto, ColorAlways, ColorNever, ColorHTML}

// Config configures a Compiler.
type Config struct {
	CacheSize   int           `yaml:"cache_size"`
	MaxColumns  int           `yaml:"max_columns"`
	Color       string        `yaml:"color"`
	MaxDepth    int           `yaml:"max_eval_depth"`
	EvalTimeout time.Duration `yaml:"eval_timeout"`
}

func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&cfg.CacheSize, "cache-size", 256, "Maximum number of parsed expressions kept in the cache. 0 disables caching.")
	f.IntVar(&cfg.MaxColumns, "max-columns", 100, "Line width the tree printer wraps at.")
	f.StringVar(&cfg.Color, "color", ColorAuto, fmt.Sprintf("Tree output coloring. Supported values: %s.", strings.Join(supportedColors, ", ")))
	f.IntVar(&cfg.MaxDepth, "max-eval-depth", 10000, "Maximum nesting depth of evaluated expressions. 0 disables the limit.")
	f.DurationVar(&cfg.EvalTimeout, "eval-timeout", 30*time.Second, "Timeout of a single evaluation. 0 disables it.")
}

func (cfg *Config) Validate() error {
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache size (%d) must not be negative", cfg.CacheSize)
	}
	if cfg.MaxColumns <= 0 {
		return fmt.Errorf("max columns (%d) must be positive", cfg.MaxColumns)
	}
	if !slices.Contains(supportedColors, cfg.Color) {
		return fmt.Errorf("unsupported color mode %q, supported values: %s", cfg.Color, strings.Join(supportedColors, ", "))
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max eval depth (%d) must not be negative", cfg.MaxDepth)
	}
	if cfg.EvalTimeout < 0 {
		return fmt.Errorf("eval timeout (%s) must not be negative", cfg.EvalTimeout)
	}
	return nil
}

// DefaultConfig returns the configuration with every flag at its default.
func DefaultConfig() Config {
	var cfg Config
	cfg.RegisterFlags(flag.NewFlagSet("defaults", flag.PanicOnError))
	return cfg
}

// LoadConfig reads a YAML configuration file. Settings missing from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "opening config file")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parsing config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}
