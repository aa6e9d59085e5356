// Package config holds configuration for the tos commands.
package config

// SimConfig holds configuration for a simulation run.
type SimConfig struct {
	Quantum   int64  // Time slice, in ticks, for periodic preemption of the lowest band
	DBPath    string // SQLite trace database path; empty disables recording
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
}

// DefaultSimConfig returns sensible defaults.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Quantum:  100,
		LogLevel: "info",
	}
}

// ServeConfig holds configuration for the trace viewer server.
type ServeConfig struct {
	Addr      string // Listen address (default ":8080")
	DBPath    string // SQLite trace database path
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
}

// DefaultServeConfig returns sensible defaults.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Addr:     ":8080",
		LogLevel: "info",
	}
}
