package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (JSONFETCH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", os.Getenv("JSONFETCH_BASE_URL"), &cfg.BaseURL)
	s.setString("log-level", os.Getenv("JSONFETCH_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("JSONFETCH_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	return s.setBoolFromString("compact", os.Getenv("JSONFETCH_COMPACT"), &cfg.Compact)
}
