// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting (AETHERWATCH_ prefix)
//
// Environment variables map to nested keys with a double underscore:
// AETHERWATCH_AVIATION__FORCE_SIMULATED sets aviation.force_simulated,
// AETHERWATCH_SERVER__PORT sets server.port.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Aviation  AviationConfig  `koanf:"aviation"`
	Camera    CameraConfig    `koanf:"camera"`
	Satellite SatelliteConfig `koanf:"satellite"`
	Vision    VisionConfig    `koanf:"vision"`
	Anomaly   AnomalyConfig   `koanf:"anomaly"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	Poller    PollerConfig    `koanf:"poller"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// AviationConfig holds aircraft feed settings. Providers lists the
// fallback chain in priority order; the synthetic generator is always
// the implicit last step and is not named here.
//
// Environment Variables:
//   - AETHERWATCH_AVIATION__PROVIDERS: comma-separated chain, e.g. "adsbfi,adsblol,opensky"
//   - AETHERWATCH_AVIATION__FORCE_SIMULATED: skip live providers entirely
//   - AETHERWATCH_AVIATION__OPENSKY__USERNAME / __PASSWORD: optional OpenSky account
type AviationConfig struct {
	Providers       []string      `koanf:"providers"`
	ForceSimulated  bool          `koanf:"force_simulated"`
	DefaultBBox     string        `koanf:"default_bbox"`
	MaxAircraft     int           `koanf:"max_aircraft" validate:"gte=1,lte=5000"`
	RadiusNM        float64       `koanf:"radius_nm" validate:"gte=10,lte=250"`
	GridConcurrency int           `koanf:"grid_concurrency" validate:"gte=1,lte=16"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheCapacity   int           `koanf:"cache_capacity" validate:"gte=1"`
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
	OpenSky         OpenSkyConfig `koanf:"opensky"`
}

// OpenSkyConfig holds optional OpenSky Network credentials. Anonymous
// access is used when the username is empty.
type OpenSkyConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// CameraConfig holds traffic camera fetch settings.
type CameraConfig struct {
	FetchTimeout   time.Duration `koanf:"fetch_timeout"`
	MaxStreamBytes int           `koanf:"max_stream_bytes" validate:"gte=65536"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	CacheCapacity  int           `koanf:"cache_capacity" validate:"gte=1"`
}

// SatelliteConfig holds NASA GIBS WMS settings.
type SatelliteConfig struct {
	BaseURL        string        `koanf:"base_url"`
	Width          int           `koanf:"width" validate:"gte=100,lte=4096"`
	DateLagDays    int           `koanf:"date_lag_days" validate:"gte=0,lte=30"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	CacheCapacity  int           `koanf:"cache_capacity" validate:"gte=1"`
}

// VisionConfig holds object detection settings. An empty BackendURL
// disables detection entirely: the detector reports LoadFailed on
// first use and every Detect call returns a passthrough result.
type VisionConfig struct {
	BackendURL       string        `koanf:"backend_url"`
	Confidence       float64       `koanf:"confidence" validate:"gte=0,lte=1"`
	InputSize        int           `koanf:"input_size" validate:"gte=64,lte=4096"`
	Devices          []string      `koanf:"devices"`
	CrowdThreshold   int           `koanf:"crowd_threshold" validate:"gte=1"`
	VehicleThreshold int           `koanf:"vehicle_threshold" validate:"gte=1"`
	RequestTimeout   time.Duration `koanf:"request_timeout"`
}

// AnomalyConfig holds thresholds for the aircraft envelope rules. The
// emergency squawk and scene rules have no tunables and are always
// registered; the altitude and speed rules are opt-in because normal
// approach traffic sits below the altitude floor.
type AnomalyConfig struct {
	LowAltitudeEnabled bool    `koanf:"low_altitude_enabled"`
	LowAltitudeFt      float64 `koanf:"low_altitude_ft" validate:"gte=100,lte=20000"`
	HighSpeedEnabled   bool    `koanf:"high_speed_enabled"`
	HighSpeedKts       float64 `koanf:"high_speed_kts" validate:"gte=100,lte=2000"`
}

// AlertsConfig holds alert buffer and notification channel settings.
// Channels are enabled solely by their own configuration being
// present; an unconfigured channel is silently skipped.
type AlertsConfig struct {
	BufferCapacity int         `koanf:"buffer_capacity" validate:"gte=10,lte=10000"`
	Email          EmailConfig `koanf:"email"`
	SMS            SMSConfig   `koanf:"sms"`
}

// EmailConfig holds SMTP delivery settings for the email alert
// channel. The channel is enabled when Host and at least one recipient
// are set.
type EmailConfig struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
	From     string   `koanf:"from" validate:"omitempty,email"`
	To       []string `koanf:"to" validate:"dive,email"`
}

// SMSConfig holds REST gateway settings for the SMS alert channel.
// The channel is enabled when GatewayURL, AccountSID and AuthToken are
// all set.
type SMSConfig struct {
	GatewayURL string `koanf:"gateway_url"`
	AccountSID string `koanf:"account_sid"`
	AuthToken  string `koanf:"auth_token"`
	From       string `koanf:"from"`
	To         string `koanf:"to"`
}

// PollerConfig holds the background refresh schedule. The poller owns
// the only ticker in the system; fetchers never self-schedule.
type PollerConfig struct {
	Interval         time.Duration `koanf:"interval"`
	CameraSweepEvery int           `koanf:"camera_sweep_every" validate:"gte=1"`
}
