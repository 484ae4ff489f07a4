// Package errors holds the sentinel errors shared across the acquisition
// packages and small helpers for wrapping them with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidBoolValue  = fmt.Errorf("invalid boolean value")
	ErrInvalidIntValue   = fmt.Errorf("invalid integer value")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat  = fmt.Errorf("invalid log format")
	ErrRetriesNegative   = fmt.Errorf("retries cannot be negative")
	ErrMaxConcurrent     = fmt.Errorf("max_concurrent must be at least 1")

	// Acquire errors.
	ErrFetchFailed  = fmt.Errorf("fetch failed")
	ErrNoMethod     = fmt.Errorf("unable to find method")
	ErrNoSource     = fmt.Errorf("unable to locate a source for the package")
	ErrMissingArch  = fmt.Errorf("package has no architecture")
	ErrCorruptIndex = fmt.Errorf("package index files are corrupted")
	ErrNoDiffMatch  = fmt.Errorf("no patch in the diff index matches the local file")

	// Metadata parsing errors.
	ErrTagFileParse = fmt.Errorf("malformed control file")
	ErrReleaseParse = fmt.Errorf("malformed Release file")

	// Cache errors.
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheInfo      = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")

	// Hook errors.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrUnknownConfigKeyWithName reports the offending configuration key.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLogFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidLogFormat, format)
}

// ErrNoMethodForScheme reports that no transport is registered for an access scheme.
func ErrNoMethodForScheme(scheme string) error {
	return fmt.Errorf("%w %s", ErrNoMethod, scheme)
}
