package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Dataset   string `mapstructure:"dataset" yaml:"dataset"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Format    string `mapstructure:"format" yaml:"format"`
	Width     int    `mapstructure:"width" yaml:"width"`
	Height    int    `mapstructure:"height" yaml:"height"`
	// Dot radius range for size-encoded scatter plots, in pixels.
	SizeMin  float64 `mapstructure:"size_min" yaml:"size_min"`
	SizeMax  float64 `mapstructure:"size_max" yaml:"size_max"`
	Parallel int     `mapstructure:"parallel" yaml:"parallel"`
	Strict   bool    `mapstructure:"strict" yaml:"strict"`

	// Loader
	MaxRows    int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal    string `mapstructure:"decimal" yaml:"decimal"`
	Thousands  string `mapstructure:"thousands" yaml:"thousands"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists every configuration key in display order.
var Keys = []string{
	"dataset", "output_dir", "format", "width", "height", "size_min", "size_max",
	"parallel", "strict", "max_rows", "delimiter", "decimal", "thousands",
	"sheet_name", "sheet_index", "log_level", "log_format",
}

const dirName = ".waterborne"

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.waterborne/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, dirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("WATERBORNE")
	v.AutomaticEnv()

	v.SetDefault("dataset", "water_pollution_disease.csv")
	v.SetDefault("output_dir", "charts")
	v.SetDefault("format", "png")
	v.SetDefault("width", 1200)
	v.SetDefault("height", 800)
	v.SetDefault("size_min", 2.0)
	v.SetDefault("size_max", 10.0)
	v.SetDefault("parallel", 1)
	v.SetDefault("strict", true)
	// Loader defaults
	v.SetDefault("max_rows", 0)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", ".")
	v.SetDefault("thousands", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit or broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Format = strings.ToLower(c.Format)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	switch strings.ToLower(c.Format) {
	case "png", "svg":
	default:
		return fmt.Errorf("invalid format: %s (use png or svg)", c.Format)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid figure size %dx%d", c.Width, c.Height)
	}
	if c.SizeMin <= 0 || c.SizeMax < c.SizeMin {
		return fmt.Errorf("invalid dot size range [%g, %g]", c.SizeMin, c.SizeMax)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("invalid parallel: %d (must be >= 1)", c.Parallel)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("invalid max_rows: %d", c.MaxRows)
	}
	for key, val := range map[string]string{"delimiter": c.Delimiter, "decimal": c.Decimal, "thousands": c.Thousands} {
		if utf8.RuneCountInString(val) > 1 {
			return fmt.Errorf("invalid %s: %q (must be a single character)", key, val)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (use text or json)", c.LogFormat)
	}
	return nil
}

// Rune returns the first rune of s, or 0 when s is empty.
func Rune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}
