package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	validSchemes    = []string{"http", "https", "ws", "wss"}
	validLogFormats = []string{"text", "json", "zerolog"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.ParseRequestURI(c.Authority.Endpoint)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("authority.endpoint: %w", err))
	case !slices.Contains(validSchemes, u.Scheme):
		errs = append(errs, fmt.Errorf("authority.endpoint: scheme %q must be one of %v", u.Scheme, validSchemes))
	}
	if c.Authority.Timeout < 0 {
		errs = append(errs, errors.New("authority.timeout must not be negative"))
	}

	if !slices.Contains(validLogFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q must be one of %v", c.Log.Format, validLogFormats))
	}
	if !slices.Contains(validLogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %v", c.Log.Level, validLogLevels))
	}

	if c.Fake.Secret == "" {
		errs = append(errs, errors.New("fake.secret is required"))
	}

	return errors.Join(errs...)
}
