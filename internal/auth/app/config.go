package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/docuchat/docuchat/pkg/httpx"
	"github.com/spf13/viper"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 3000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingCron    string        // Cleanup schedule in cron syntax (default: @every 1h)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseURL    string // Required for postgres
	DatabaseFile   string // SQLite file (default: auth.db)

	RedisURL  string // Optional: enables the Redis mail queue
	QueueName string // Redis list mail jobs are pushed onto (default: docuchat-jobs)

	AccessTokenSecret  string // Required: HS256 key for access tokens
	RefreshTokenSecret string // Required: key for the stored token digests
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	VerificationTTL    time.Duration
	PasswordResetTTL   time.Duration
	InviteTTL          time.Duration
	Issuer             string
	Audience           string

	AccessCookieName  string
	RefreshCookieName string
	CSRFCookieName    string
	CookieDomain      string
	SecureCookies     bool

	AppBaseURL        string // Frontend origin used in mailed links
	PasswordMinLength int

	RateLimits httpx.RateLimits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("port", 3000)
	v.SetDefault("shutdown_grace_period", 10*time.Second)
	v.SetDefault("housekeeping_schedule", "@every 1h")

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_url", "")
	v.SetDefault("auth_database_file", "auth.db")

	v.SetDefault("redis_url", "")
	v.SetDefault("queue_name", "docuchat-jobs")

	v.SetDefault("auth_access_token_secret", "")
	v.SetDefault("auth_refresh_token_secret", "")
	v.SetDefault("auth_access_token_ttl_seconds", 900)
	v.SetDefault("auth_refresh_token_ttl_seconds", 2592000)
	v.SetDefault("auth_email_verification_ttl", 24*time.Hour)
	v.SetDefault("auth_password_reset_ttl", 2*time.Hour)
	v.SetDefault("auth_invite_ttl", 7*24*time.Hour)
	v.SetDefault("auth_jwt_issuer", "docuchat")
	v.SetDefault("auth_jwt_audience", "docuchat-api")

	v.SetDefault("auth_access_cookie_name", "docuchat_access")
	v.SetDefault("auth_refresh_cookie_name", "docuchat_refresh")
	v.SetDefault("auth_csrf_cookie_name", "docuchat_csrf")
	v.SetDefault("auth_cookie_domain", "")
	v.SetDefault("auth_secure_cookies", true)

	v.SetDefault("app_base_url", "http://localhost:3000")
	v.SetDefault("auth_password_min_length", 12)
}

// LoadConfig reads the environment and, when CONFIG_FILE is set, a config
// file whose keys are the lower-cased variable names.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Env:                 v.GetString("env"),
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
		Port:                v.GetInt("port"),
		ShutdownGracePeriod: v.GetDuration("shutdown_grace_period"),
		HousekeepingCron:    v.GetString("housekeeping_schedule"),

		DatabaseDriver: strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:    v.GetString("database_url"),
		DatabaseFile:   v.GetString("auth_database_file"),

		RedisURL:  v.GetString("redis_url"),
		QueueName: v.GetString("queue_name"),

		AccessTokenSecret:  v.GetString("auth_access_token_secret"),
		RefreshTokenSecret: v.GetString("auth_refresh_token_secret"),
		AccessTokenTTL:     time.Duration(v.GetInt64("auth_access_token_ttl_seconds")) * time.Second,
		RefreshTokenTTL:    time.Duration(v.GetInt64("auth_refresh_token_ttl_seconds")) * time.Second,
		VerificationTTL:    v.GetDuration("auth_email_verification_ttl"),
		PasswordResetTTL:   v.GetDuration("auth_password_reset_ttl"),
		InviteTTL:          v.GetDuration("auth_invite_ttl"),
		Issuer:             v.GetString("auth_jwt_issuer"),
		Audience:           v.GetString("auth_jwt_audience"),

		AccessCookieName:  v.GetString("auth_access_cookie_name"),
		RefreshCookieName: v.GetString("auth_refresh_cookie_name"),
		CSRFCookieName:    v.GetString("auth_csrf_cookie_name"),
		CookieDomain:      v.GetString("auth_cookie_domain"),
		SecureCookies:     v.GetBool("auth_secure_cookies"),

		AppBaseURL:        v.GetString("app_base_url"),
		PasswordMinLength: v.GetInt("auth_password_min_length"),

		RateLimits: httpx.RateLimitsFrom(v.GetString),
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("AUTH_REFRESH_TOKEN_SECRET is required"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_SECRET and AUTH_REFRESH_TOKEN_SECRET must differ"))
	}

	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.PasswordMinLength < 8 {
		errs = append(errs, errors.New("AUTH_PASSWORD_MIN_LENGTH must be at least 8"))
	}
	if u, err := url.Parse(c.AppBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid APP_BASE_URL %q", c.AppBaseURL))
	}

	return errors.Join(errs...)
}
