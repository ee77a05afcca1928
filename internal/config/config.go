package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSecret is the development signing secret used when none is configured.
const DefaultSecret = "defaultSecretKeyThatIsAtLeast256BitsLongForHS256AlgorithmSecurity"

// DefaultExpirationSeconds is the token validity used when none is configured.
const DefaultExpirationSeconds = 86400

// MaxExpirationSeconds is the largest validity a time.Duration can hold.
const MaxExpirationSeconds = math.MaxInt64 / int64(time.Second)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Service               string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SecurityConfig holds the token signing settings. It is read once at startup
// and never mutated afterwards.
type SecurityConfig struct {
	Secret            string
	ExpirationSeconds int64
	Enabled           bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	expiration, err := strconv.ParseInt(getEnv("SECURITY_JWT_EXPIRATION", strconv.Itoa(DefaultExpirationSeconds)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SECURITY_JWT_EXPIRATION: %w", err)
	}

	enabled, err := getEnvAsFlag("SECURITY_JWT_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid SECURITY_JWT_ENABLED: %w", err)
	}

	// An explicitly empty secret is kept so Validate can reject it.
	secret, ok := os.LookupEnv("SECURITY_JWT_SECRET")
	if !ok {
		secret = DefaultSecret
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "commerce-auth"),
			Service:               getEnv("APP_SERVICE", "Auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Security: SecurityConfig{
			Secret:            secret,
			ExpirationSeconds: expiration,
			Enabled:           enabled,
		},
	}

	if err := cfg.Security.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Validate checks the signing settings for values that cannot produce usable tokens.
func (s SecurityConfig) Validate() error {
	if s.ExpirationSeconds < 0 {
		return fmt.Errorf("invalid SECURITY_JWT_EXPIRATION: must not be negative, got %d", s.ExpirationSeconds)
	}
	if s.ExpirationSeconds > MaxExpirationSeconds {
		return fmt.Errorf("invalid SECURITY_JWT_EXPIRATION: must be at most %d, got %d", MaxExpirationSeconds, s.ExpirationSeconds)
	}
	if s.Enabled && s.Secret == "" {
		return errors.New("SECURITY_JWT_SECRET must be set when authentication is enabled")
	}
	return nil
}

// SecretBytes returns the HMAC key.
func (s SecurityConfig) SecretBytes() []byte {
	return []byte(s.Secret)
}

// DefaultValidity returns the token lifetime applied when a caller does not pick one.
func (s SecurityConfig) DefaultValidity() time.Duration {
	return time.Duration(s.ExpirationSeconds) * time.Second
}

// WeakSecret reports whether the secret is shorter than the 256 bits HS256 expects.
func (s SecurityConfig) WeakSecret() bool {
	return len(s.Secret) < 32
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsFlag parses a boolean switch, accepting on/off and yes/no alongside
// the strconv forms. Unrecognized values are an error, never the fallback.
func getEnvAsFlag(key string, fallback bool) (bool, error) {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "":
		return fallback, nil
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("unrecognized boolean %q", os.Getenv(key))
	}
	return parsed, nil
}
