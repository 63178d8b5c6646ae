package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// JWT settings verify tokens minted by the platform identity provider.
	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// RTC settings identify this application to the media backend.
	// The secret signs join tokens and must only come from env or a secret store.
	RTCAppID     string        `mapstructure:"rtc_app_id" yaml:"rtc_app_id"`
	RTCAppSecret string        `mapstructure:"rtc_app_secret" yaml:"rtc_app_secret"`
	RTCTokenTTL  time.Duration `mapstructure:"rtc_token_ttl" yaml:"rtc_token_ttl"`

	// Push delivery. When the credentials file is empty the notification
	// endpoint answers 503 instead of dispatching.
	FCMCredentialsFile  string        `mapstructure:"fcm_credentials_file" yaml:"fcm_credentials_file"`
	PushMaxTries        int           `mapstructure:"push_max_tries" yaml:"push_max_tries"`
	PushInitialInterval time.Duration `mapstructure:"push_initial_interval" yaml:"push_initial_interval"`

	// Timeouts bounding the two external calls made per notification.
	LookupTimeout   time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout" yaml:"dispatch_timeout"`

	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                ":8080",
		ReadHeaderTimeout:   5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		LogLevel:            "info",
		LogFormat:           "console",
		DatabasePath:        "callgate.db",
		JWTIssuer:           "callgate",
		JWTAudience:         "callgate-clients",
		RTCTokenTTL:         time.Hour,
		PushMaxTries:        3,
		PushInitialInterval: 500 * time.Millisecond,
		LookupTimeout:       5 * time.Second,
		DispatchTimeout:     5 * time.Second,
		RateLimitPerMinute:  60,
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.RTCAppID == "" {
		return ErrMissingRTCAppID
	}
	if c.RTCAppSecret == "" {
		return ErrMissingRTCAppSecret
	}
	if c.RTCTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	return nil
}
