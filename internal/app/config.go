package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"gridpulse_session"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	RestoreWait   time.Duration `envconfig:"RESTORE_WAIT" default:"2s"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	RateLimit      int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	LoginRateLimit int `envconfig:"LOGIN_RATE_LIMIT_PER_MINUTE" default:"10"`
}

// MockConfig configures the in-memory backend.
type MockConfig struct {
	Addr      string        `envconfig:"MOCKAPI_ADDR" default:":8000"`
	Secret    string        `envconfig:"MOCKAPI_SECRET" default:"gridpulse-mock-secret"`
	TokenTTL  time.Duration `envconfig:"MOCKAPI_TOKEN_TTL" default:"60m"`
	LogFormat string        `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("API_BASE_URL %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.RestoreWait < 0 {
		return errors.New("RESTORE_WAIT must not be negative")
	}
	return nil
}

// LoadMockConfig reads the mock backend configuration.
func LoadMockConfig() (*MockConfig, error) {
	var cfg MockConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
