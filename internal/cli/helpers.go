package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/acquire/internal/logger"
	"github.com/glorpus-work/acquire/pkg/config"
	"github.com/joho/godotenv"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	EnvFile    *string
)

// LoadEnv reads .env style files into the process environment. Missing
// files are skipped and variables that are already set keep their value.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load environment file %s: %w", file, err)
		}
	}
	return nil
}

// Setup loads the environment and configures logging for a command. The
// returned closer releases the log file, if one is configured.
func Setup() (io.Closer, error) {
	envFile := ".env"
	if EnvFile != nil && *EnvFile != "" {
		envFile = *EnvFile
	}
	if err := LoadEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		// Commands that need the configuration report the error themselves.
		cfg = config.DefaultConfig()
		applyOverrides(cfg)
	}

	closer := logger.SetFileOutput(cfg.Settings.LogFile)
	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.LogFormat))
	return closer, nil
}

// loadConfig loads the configuration file and applies environment and flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg)
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Settings.LogLevel = level
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig fail with a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}
