package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "CALLGATE_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Sentinel errors for required settings.
var (
	ErrMissingJWTSecret    = errors.New("jwt_secret is required (set CALLGATE_JWT_SECRET)")
	ErrMissingRTCAppID     = errors.New("rtc_app_id is required (set CALLGATE_RTC_APP_ID)")
	ErrMissingRTCAppSecret = errors.New("rtc_app_secret is required (set CALLGATE_RTC_APP_SECRET)")
	ErrInvalidTokenTTL     = errors.New("rtc_token_ttl must be positive")
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("database_path", cfg.DatabasePath)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", cfg.JWTIssuer)
	v.SetDefault("jwt_audience", cfg.JWTAudience)
	v.SetDefault("rtc_app_id", "")
	v.SetDefault("rtc_app_secret", "")
	v.SetDefault("rtc_token_ttl", cfg.RTCTokenTTL)
	v.SetDefault("fcm_credentials_file", "")
	v.SetDefault("push_max_tries", cfg.PushMaxTries)
	v.SetDefault("push_initial_interval", cfg.PushInitialInterval)
	v.SetDefault("lookup_timeout", cfg.LookupTimeout)
	v.SetDefault("dispatch_timeout", cfg.DispatchTimeout)
	v.SetDefault("rate_limit_per_minute", cfg.RateLimitPerMinute)

	v.SetEnvPrefix("CALLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

// writeDefaultConfig persists starter settings so operators have a file to edit.
// Secrets are deliberately left out of the written file.
func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.JWTSecret = ""
	cfg.RTCAppSecret = ""
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
