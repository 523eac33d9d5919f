package config

// Config holds tool settings that are independent of the deployment being run.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Build BuildConfig `json:"build"`
}

type BuildConfig struct {
	// Subprocess limits
	TimeoutSeconds     int `json:"timeout_seconds"`      // Default: 3600 (1 hour)
	GracefulShutdownMs int `json:"graceful_shutdown_ms"` // Default: 5000

	// Output capture
	MaxOutputSize   int64 `json:"max_output_size"`   // Default: 10 * 1024 * 1024 (10MB)
	OutputTailLines int   `json:"output_tail_lines"` // Default: 20
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			TimeoutSeconds:     3600,
			GracefulShutdownMs: 5000,
			MaxOutputSize:      10 * 1024 * 1024,
			OutputTailLines:    20,
		},
	}
}
