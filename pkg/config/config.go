// Package config provides configuration management for acquire.
// It loads, validates and saves the YAML configuration file and converts it
// into the options an acquisition session runs with.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/acquire/pkg/acquire"
	"github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`

	// Acquisition behaviour
	Acquire AcquireConfig `yaml:"acquire"`

	// Diagnostic traces
	Debug DebugConfig `yaml:"debug"`

	// Scripting hooks
	Hooks HooksConfig `yaml:"hooks"`
}

// Settings represents general application settings.
type Settings struct {
	// Cache locations
	ListsDir    string `yaml:"lists_dir,omitempty"`
	ArchivesDir string `yaml:"archives_dir,omitempty"`

	// Output settings
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
	LogFile   string `yaml:"log_file,omitempty"`

	// Transfers running at once
	MaxConcurrent int `yaml:"max_concurrent"`
}

// AcquireConfig holds the switches of the fetchers.
type AcquireConfig struct {
	PDiffs               bool   `yaml:"pdiffs"`
	Retries              int    `yaml:"retries"`
	SourceSymlinks       bool   `yaml:"source_symlinks"`
	AllowUnauthenticated bool   `yaml:"allow_unauthenticated"`
	Bzip2Path            string `yaml:"bzip2_path,omitempty"`
}

// DebugConfig enables the pdiff and authentication traces.
type DebugConfig struct {
	PDiffs bool `yaml:"pdiffs"`
	Auth   bool `yaml:"auth"`
}

// HooksConfig points to the directory of hook scripts.
type HooksConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// Default configuration values.
const (
	// DefaultMaxConcurrent is the default maximum number of concurrent transfers.
	DefaultMaxConcurrent = 4

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	opts := acquire.DefaultOptions()

	hooksDir := filepath.Join(".", "hooks")
	if dir, err := os.UserConfigDir(); err == nil {
		hooksDir = filepath.Join(dir, fsutil.AppName, "hooks")
	}

	return &Config{
		Settings: Settings{
			ListsDir:      opts.ListsDir,
			ArchivesDir:   opts.ArchivesDir,
			LogLevel:      "info",
			LogFormat:     "text",
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Acquire: AcquireConfig{
			PDiffs:         opts.PDiffs,
			Retries:        opts.Retries,
			SourceSymlinks: opts.SourceSymlinks,
			Bzip2Path:      opts.Bzip2Path,
		},
		Hooks: HooksConfig{
			Dir: hooksDir,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	// Validate the config file path
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader. Keys absent
// from the document keep their default values.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	if c.Acquire.Retries < 0 {
		return errors.ErrRetriesNegative
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.MaxConcurrent < 1 {
		return errors.ErrMaxConcurrent
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(s.LogFormat)] {
		return errors.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// applyDefaults fills in values that were explicitly blanked.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.ListsDir == "" {
		c.Settings.ListsDir = defaults.Settings.ListsDir
	}
	if c.Settings.ArchivesDir == "" {
		c.Settings.ArchivesDir = defaults.Settings.ArchivesDir
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Acquire.Bzip2Path == "" {
		c.Acquire.Bzip2Path = defaults.Acquire.Bzip2Path
	}
	if c.Hooks.Dir == "" {
		c.Hooks.Dir = defaults.Hooks.Dir
	}
}

// Options converts the configuration into the options of an acquisition session.
func (c *Config) Options() acquire.Options {
	return acquire.Options{
		DebugDiffs:           c.Debug.PDiffs,
		DebugAuth:            c.Debug.Auth,
		PDiffs:               c.Acquire.PDiffs,
		Retries:              c.Acquire.Retries,
		SourceSymlinks:       c.Acquire.SourceSymlinks,
		AllowUnauthenticated: c.Acquire.AllowUnauthenticated,
		ListsDir:             c.Settings.ListsDir,
		ArchivesDir:          c.Settings.ArchivesDir,
		Bzip2Path:            c.Acquire.Bzip2Path,
	}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}
