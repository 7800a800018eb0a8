package cliconfig

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/bft-labs/jsonfetch/pkg/log"
)

// Config holds CLI configuration for jsonfetch.
type Config struct {
	// BaseURL is prepended to relative request targets.
	BaseURL string

	// Timeout bounds each request. Zero means no deadline.
	Timeout time.Duration

	LogLevel string
	Compact  bool
	Watch    bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
	}
}

// Validate checks the configuration for errors and normalizes BaseURL.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("parse base-url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base-url must be an http or https URL, got %q", c.BaseURL)
		}
		c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}

	return nil
}

// ResolveURL returns target unchanged when it is absolute and joins it onto
// BaseURL otherwise.
func (c Config) ResolveURL(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", target, err)
	}
	if u.IsAbs() {
		return target, nil
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("relative url %q requires base-url", target)
	}
	return c.BaseURL + "/" + strings.TrimLeft(target, "/"), nil
}

// configSetter applies values only where the matching flag was not set on
// the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts the forms strconv.ParseBool does ("1", "t",
// "true", "0", "false", ...).
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
