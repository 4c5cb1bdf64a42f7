package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration required by the API process.
// All values must come from env (or a .env file loaded by main).
// No business logic should depend on raw environment variables.
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Mongo     MongoConfig
	Auth      AuthConfig
	Bland     BlandConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Env  string
	Port int

	// CORSOrigins lists origins allowed to call the API from a browser.
	// "*" allows any origin.
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional. Without it, webhook and campaign launch locks are skipped.
type RedisConfig struct {
	Host string
	Port int
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

// MongoConfig is optional. Without it, raw webhook deliveries are not archived.
type MongoConfig struct {
	URI      string
	Database string
}

func (c MongoConfig) Enabled() bool { return c.URI != "" }

// AuthConfig controls the optional bearer-token check.
// Tokens are HS256 JWTs minted by the identity provider with a shared secret.
type AuthConfig struct {
	Enabled     bool
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

// BlandConfig configures the outbound calling provider.
type BlandConfig struct {
	APIKey        string
	BaseURL       string
	WebhookURL    string
	Voice         string
	Task          string
	FirstSentence string
	Timeout       time.Duration
}

type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
}

const (
	defaultBlandBaseURL  = "https://api.bland.ai/v1"
	defaultBlandVoice    = "mason"
	defaultBlandTask     = "You are a sales representative from BullFit, a pharmacist-formulated supplement brand. You are calling to introduce our wholesale program to retail store owners."
	defaultFirstSentence = "Hi, this is a representative from BullFit supplements. Do you have a moment to chat about our wholesale program?"
)

// Load reads the process environment. Keys are matched case-insensitively
// (APP_PORT and app_port are the same key).
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (Config, error) {
	c := Config{}

	c.App.Env = str(k, "app_env")
	c.App.Port = k.Int("app_port")
	c.App.CORSOrigins = splitList(str(k, "cors_allowed_origins"))

	c.DB.Host = str(k, "db_host")
	c.DB.Port = k.Int("db_port")
	c.DB.User = str(k, "db_user")
	c.DB.Password = k.String("db_password")
	c.DB.Name = str(k, "db_name")
	c.DB.SSLMode = str(k, "db_sslmode")

	c.Redis.Host = str(k, "redis_host")
	c.Redis.Port = k.Int("redis_port")

	c.Mongo.URI = str(k, "mongo_uri")
	c.Mongo.Database = str(k, "mongo_db")

	c.Auth.Enabled = k.Bool("auth_enabled")
	c.Auth.JWTSecret = k.String("jwt_secret")
	c.Auth.JWTIssuer = str(k, "jwt_issuer")
	c.Auth.JWTAudience = str(k, "jwt_audience")

	c.Bland.APIKey = str(k, "bland_api_key")
	c.Bland.BaseURL = str(k, "bland_base_url")
	c.Bland.WebhookURL = str(k, "bland_webhook_url")
	c.Bland.Voice = str(k, "bland_voice")
	c.Bland.Task = str(k, "bland_task")
	c.Bland.FirstSentence = str(k, "bland_first_sentence")
	c.Bland.Timeout = k.Duration("bland_timeout")

	c.Telemetry.Enabled = k.Bool("otel_enabled")
	c.Telemetry.ServiceName = str(k, "otel_service_name")

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate applies defaults and reports every missing or malformed value at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if len(c.App.CORSOrigins) == 0 {
		c.App.CORSOrigins = []string{"*"}
	}
	for _, o := range c.App.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("CORS_ALLOWED_ORIGINS entries must be * or start with http:// or https://, got %q", o))
		}
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Enabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Mongo.Enabled() && c.Mongo.Database == "" {
		c.Mongo.Database = "crm"
	}

	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED is true"))
		}
		if c.IsProduction() && c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
	}

	if c.Bland.APIKey == "" {
		errs = append(errs, errors.New("BLAND_API_KEY is required"))
	}
	if c.Bland.WebhookURL == "" && c.IsProduction() {
		errs = append(errs, errors.New("BLAND_WEBHOOK_URL is required in production"))
	}
	if c.Bland.BaseURL == "" {
		c.Bland.BaseURL = defaultBlandBaseURL
	}
	c.Bland.BaseURL = strings.TrimRight(c.Bland.BaseURL, "/")
	if c.Bland.Voice == "" {
		c.Bland.Voice = defaultBlandVoice
	}
	if c.Bland.Task == "" {
		c.Bland.Task = defaultBlandTask
	}
	if c.Bland.FirstSentence == "" {
		c.Bland.FirstSentence = defaultFirstSentence
	}
	if c.Bland.Timeout <= 0 {
		c.Bland.Timeout = 30 * time.Second
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "retail-crm"
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func str(k *koanf.Koanf, key string) string {
	return strings.TrimSpace(k.String(key))
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
