package cli

// Environment variables read after the .env file has been loaded.
const (
	// EnvConfig names the configuration file when --config is not given.
	EnvConfig = "ACQUIRE_CONFIG"
	// EnvLogLevel overrides settings.log_level.
	EnvLogLevel = "ACQUIRE_LOG_LEVEL"
)

// TabWidth is the width of tabs in formatted output.
const TabWidth = 2
