// Package config holds the storesnap configuration. Values are read from
// a yaml file, environment variables or both.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type ctxKey string

// LoggerCtxKey is the context key under which a *slog.Logger is stored.
const LoggerCtxKey ctxKey = "logger"

// DefaultUserAgent is a regular desktop Chrome user agent. Some storefronts
// serve a stripped down page or a bot wall to the headless default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// BrowserConfig defines how the headless browser is started.
type BrowserConfig struct {
	UserAgent    string `yaml:"user_agent" env:"STORESNAP_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
	WindowWidth  int    `yaml:"window_width" env:"STORESNAP_WINDOW_WIDTH" env-default:"1920" validate:"gte=320"`
	WindowHeight int    `yaml:"window_height" env:"STORESNAP_WINDOW_HEIGHT" env-default:"1080" validate:"gte=240"`
	ShowWindow   bool   `yaml:"show_window" env:"STORESNAP_SHOW_WINDOW"` // run chrome with a visible window, mostly for debugging
	ExecPath     string `yaml:"exec_path" env:"STORESNAP_CHROME_PATH"` // empty means chromedp looks up chrome itself
}

// CaptureConfig defines the timing of a single capture step. Fields where
// zero is valid have no env-default, cleanenv would replace a zero read from
// the file with it. Their defaults come from defaultConfig.
type CaptureConfig struct {
	PageTimeout      time.Duration `yaml:"page_timeout" env:"STORESNAP_PAGE_TIMEOUT" env-default:"120s" validate:"gt=0"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout" env:"STORESNAP_DISCOVERY_TIMEOUT" env-default:"60s" validate:"gt=0"`
	SettleDelay      time.Duration `yaml:"settle_delay" env:"STORESNAP_SETTLE_DELAY" validate:"gte=0"`
	ScrollStep       int           `yaml:"scroll_step" env:"STORESNAP_SCROLL_STEP" validate:"gte=0"`
	ScrollMax        int           `yaml:"scroll_max" env:"STORESNAP_SCROLL_MAX" validate:"gte=0"`
	ScrollPause      time.Duration `yaml:"scroll_pause" env:"STORESNAP_SCROLL_PAUSE" validate:"gte=0"`
	StepDelay        time.Duration `yaml:"step_delay" env:"STORESNAP_STEP_DELAY" validate:"gte=0"`
	TargetDelay      time.Duration `yaml:"target_delay" env:"STORESNAP_TARGET_DELAY" validate:"gte=0"`
}

// LogConfig defines where diagnostic logs go. When File is empty logs are
// written to stderr, except in the terminal UI which always needs a file.
type LogConfig struct {
	File       string `yaml:"file" env:"STORESNAP_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"STORESNAP_LOG_MAX_SIZE" env-default:"10" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" env:"STORESNAP_LOG_MAX_BACKUPS" validate:"gte=0"`
}

// Config is the overall storesnap configuration.
type Config struct {
	OutputDir string        `yaml:"output_dir" env:"STORESNAP_OUTPUT_DIR" env-default:"screenshots" validate:"required"`
	Browser   BrowserConfig `yaml:"browser"`
	Capture   CaptureConfig `yaml:"capture"`
	Log       LogConfig     `yaml:"log"`
}

// Debug enables debug logging and additional diagnostics.
var Debug = false

var validate = validator.New()

// NewConfig reads the configuration from the file at path. A missing file is
// not an error, the configuration is then built from environment variables
// and defaults only.
func NewConfig(path string) (*Config, error) {
	config := defaultConfig()

	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, &config)
	} else if path != "" && !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file %s: %w", path, statErr)
	} else {
		err = cleanenv.ReadEnv(&config)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func defaultConfig() Config {
	return Config{
		Capture: CaptureConfig{
			SettleDelay: 3 * time.Second,
			ScrollStep:  400,
			ScrollMax:   15000,
			ScrollPause: 250 * time.Millisecond,
			StepDelay:   2 * time.Second,
			TargetDelay: 2 * time.Second,
		},
		Log: LogConfig{
			MaxBackups: 3,
		},
	}
}

// Default returns the configuration made of defaults and environment
// variables.
func Default() (*Config, error) {
	return NewConfig("")
}

// Validate checks the value constraints of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Write encodes c as yaml to w.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
