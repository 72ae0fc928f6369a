// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aetherwatch/config.yaml",
	"/etc/aetherwatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the
// config file path.
const ConfigPathEnvVar = "AETHERWATCH_CONFIG"

// envPrefix selects which environment variables participate in config
// loading. Everything else in the environment is ignored.
const envPrefix = "AETHERWATCH_"

// Default returns a Config with all default values applied and no file
// or environment layering. Tests and embedded callers use it directly.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8050,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Aviation: AviationConfig{
			Providers:       []string{"adsbfi", "adsblol", "opensky"},
			ForceSimulated:  false,
			DefaultBBox:     "-125,24,-66,50", // continental United States
			MaxAircraft:     500,
			RadiusNM:        250,
			GridConcurrency: 4,
			RequestTimeout:  8 * time.Second,
			CacheTTL:        15 * time.Second,
			CacheCapacity:   10,
			RateLimit:       4.0,
			RateBurst:       32,
		},
		Camera: CameraConfig{
			FetchTimeout:   6 * time.Second,
			MaxStreamBytes: 1 << 20,
			CacheTTL:       10 * time.Second,
			CacheCapacity:  30,
		},
		Satellite: SatelliteConfig{
			BaseURL:        "https://gibs.earthdata.nasa.gov/wms/epsg4326/best/wms.cgi",
			Width:          800,
			DateLagDays:    2,
			RequestTimeout: 15 * time.Second,
			CacheTTL:       5 * time.Minute,
			CacheCapacity:  20,
		},
		Vision: VisionConfig{
			BackendURL:       "", // empty = detection disabled, passthrough only
			Confidence:       0.35,
			InputSize:        640,
			Devices:          []string{"cuda", "mps", "cpu"},
			CrowdThreshold:   10,
			VehicleThreshold: 6,
			RequestTimeout:   30 * time.Second,
		},
		Anomaly: AnomalyConfig{
			LowAltitudeFt: 3000,
			HighSpeedKts:  600,
		},
		Alerts: AlertsConfig{
			BufferCapacity: 200,
			Email: EmailConfig{
				Port: 587,
			},
		},
		Poller: PollerConfig{
			Interval:         15 * time.Second,
			CameraSweepEvery: 4,
		},
	}
}

// Load builds the effective configuration using Koanf v2 with layered
// sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults. The returned Config has passed
// Validate.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// AETHERWATCH_AVIATION__FORCE_SIMULATED -> aviation.force_simulated
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none
// found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps an environment variable name to a koanf config
// path. The AETHERWATCH_ prefix is stripped by the provider before the
// name reaches this function; double underscores separate nesting
// levels so single underscores survive inside key names.
//
// Examples:
//   - AETHERWATCH_SERVER__PORT -> server.port
//   - AETHERWATCH_AVIATION__FORCE_SIMULATED -> aviation.force_simulated
//   - AETHERWATCH_AVIATION__OPENSKY__USERNAME -> aviation.opensky.username
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	// AETHERWATCH_CONFIG names the config file, not a config key.
	if key == "config" {
		return ""
	}

	return strings.ReplaceAll(key, "__", ".")
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when they arrive from the environment as
// plain strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"aviation.providers",
	"vision.devices",
	"alerts.email.to",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars come in as strings, but the config
// expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults), leave alone.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
