// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// KnownAviationProviders lists the provider names accepted in
// aviation.providers, in the default chain order.
var KnownAviationProviders = []string{"adsbfi", "adsblol", "opensky"}

// Validate checks that the configuration is complete and internally
// consistent. Struct tags handle range checks; everything tags cannot
// express (provider names, bbox syntax, URL shapes, cross-field
// channel requirements) is checked by hand with error messages that
// name the environment variable to fix.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration values: %w", err)
	}

	if err := c.validateAviation(); err != nil {
		return err
	}

	if err := c.validateSatellite(); err != nil {
		return err
	}

	if err := c.validateVision(); err != nil {
		return err
	}

	if err := c.validateAlerts(); err != nil {
		return err
	}

	if err := c.validateTimeouts(); err != nil {
		return err
	}

	return c.validatePoller()
}

func (c *Config) validateAviation() error {
	if len(c.Aviation.Providers) == 0 && !c.Aviation.ForceSimulated {
		return fmt.Errorf("AETHERWATCH_AVIATION__PROVIDERS must name at least one provider unless force_simulated is set")
	}

	for _, name := range c.Aviation.Providers {
		if !isKnownProvider(name) {
			return fmt.Errorf("AETHERWATCH_AVIATION__PROVIDERS: unknown provider %q (valid: adsbfi, adsblol, opensky)", name)
		}
	}

	if c.Aviation.DefaultBBox != "" {
		if _, err := models.ParseBoundingBox(c.Aviation.DefaultBBox); err != nil {
			return fmt.Errorf("AETHERWATCH_AVIATION__DEFAULT_BBOX is invalid: %w", err)
		}
	}

	if c.Aviation.RateLimit < 0 {
		return fmt.Errorf("AETHERWATCH_AVIATION__RATE_LIMIT must not be negative")
	}

	if c.Aviation.OpenSky.Username != "" && c.Aviation.OpenSky.Password == "" {
		return fmt.Errorf("AETHERWATCH_AVIATION__OPENSKY__PASSWORD is required when a username is set")
	}

	return nil
}

func (c *Config) validateSatellite() error {
	if err := validateServiceURL(c.Satellite.BaseURL, "AETHERWATCH_SATELLITE__BASE_URL"); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVision() error {
	// Empty backend URL means detection is disabled, which is valid.
	if c.Vision.BackendURL == "" {
		return nil
	}
	if err := validateServiceURL(c.Vision.BackendURL, "AETHERWATCH_VISION__BACKEND_URL"); err != nil {
		return err
	}

	if len(c.Vision.Devices) == 0 {
		return fmt.Errorf("AETHERWATCH_VISION__DEVICES must name at least one device when a backend is configured")
	}
	for _, d := range c.Vision.Devices {
		switch d {
		case "cuda", "mps", "cpu":
		default:
			return fmt.Errorf("AETHERWATCH_VISION__DEVICES: unknown device %q (valid: cuda, mps, cpu)", d)
		}
	}
	return nil
}

func (c *Config) validateAlerts() error {
	email := c.Alerts.Email
	if email.Host != "" {
		if email.Port < 1 || email.Port > 65535 {
			return fmt.Errorf("AETHERWATCH_ALERTS__EMAIL__PORT must be between 1 and 65535")
		}
		if email.From == "" {
			return fmt.Errorf("AETHERWATCH_ALERTS__EMAIL__FROM is required when an SMTP host is set")
		}
		if len(email.To) == 0 {
			return fmt.Errorf("AETHERWATCH_ALERTS__EMAIL__TO must list at least one recipient when an SMTP host is set")
		}
	}

	sms := c.Alerts.SMS
	if sms.GatewayURL != "" {
		if err := validateServiceURL(sms.GatewayURL, "AETHERWATCH_ALERTS__SMS__GATEWAY_URL"); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateTimeouts() error {
	checks := []struct {
		name string
		d    time.Duration
	}{
		{"AETHERWATCH_SERVER__TIMEOUT", c.Server.Timeout},
		{"AETHERWATCH_AVIATION__REQUEST_TIMEOUT", c.Aviation.RequestTimeout},
		{"AETHERWATCH_AVIATION__CACHE_TTL", c.Aviation.CacheTTL},
		{"AETHERWATCH_CAMERA__FETCH_TIMEOUT", c.Camera.FetchTimeout},
		{"AETHERWATCH_CAMERA__CACHE_TTL", c.Camera.CacheTTL},
		{"AETHERWATCH_SATELLITE__REQUEST_TIMEOUT", c.Satellite.RequestTimeout},
		{"AETHERWATCH_SATELLITE__CACHE_TTL", c.Satellite.CacheTTL},
		{"AETHERWATCH_VISION__REQUEST_TIMEOUT", c.Vision.RequestTimeout},
	}

	for _, check := range checks {
		if check.d <= 0 {
			return fmt.Errorf("%s must be a positive duration", check.name)
		}
	}
	return nil
}

func (c *Config) validatePoller() error {
	if c.Poller.Interval < time.Second {
		return fmt.Errorf("AETHERWATCH_POLLER__INTERVAL must be at least 1s")
	}
	return nil
}

func isKnownProvider(name string) bool {
	for _, known := range KnownAviationProviders {
		if name == known {
			return true
		}
	}
	return false
}

// validateServiceURL validates that a URL is a usable http/https
// service endpoint. Paths are allowed (the GIBS WMS endpoint has one),
// query parameters are not.
func validateServiceURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
