package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token formats understood by TOKEN_FORMAT
const (
	TokenFormatPaseto = "paseto"
	TokenFormatJWT    = "jwt"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
	// TrustedProxies are the peers allowed to set X-Forwarded-For and X-Real-IP.
	// Empty means forwarding headers are ignored and the client IP is the TCP peer.
	TrustedProxies []netip.Prefix
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// TokenFormat selects the signer: "paseto" (v4.local) or "jwt" (HS256)
	TokenFormat          string
	AccessTokenSecret    []byte
	RefreshTokenSecret   []byte
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

type MediaConfig struct {
	Bucket        string
	Region        string
	Endpoint      string // empty for AWS, set for MinIO and other S3-compatible hosts
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // prefix for returned secure URLs
	KeyPrefix     string
	UsePathStyle  bool
	TempDir       string
	MaxUploadSize int64
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// Load reads configuration from environment variables
// Call godotenv.Load() before this if using .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8000"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "vidtube"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenFormat:          strings.ToLower(getEnv("TOKEN_FORMAT", TokenFormatPaseto)),
			AccessTokenSecret:    []byte(getEnv("ACCESS_TOKEN_SECRET", "")),
			RefreshTokenSecret:   []byte(getEnv("REFRESH_TOKEN_SECRET", "")),
			AccessTokenDuration:  getDurationEnv("ACCESS_TOKEN_DURATION", 15*time.Minute),
			RefreshTokenDuration: getDurationEnv("REFRESH_TOKEN_DURATION", 10*24*time.Hour),
		},
		Media: MediaConfig{
			Bucket:        getEnv("MEDIA_BUCKET", "vidtube"),
			Region:        getEnv("MEDIA_REGION", "us-east-1"),
			Endpoint:      getEnv("MEDIA_ENDPOINT", ""),
			AccessKey:     getEnv("MEDIA_ACCESS_KEY", ""),
			SecretKey:     getEnv("MEDIA_SECRET_KEY", ""),
			PublicBaseURL: getEnv("MEDIA_PUBLIC_URL", ""),
			KeyPrefix:     getEnv("MEDIA_KEY_PREFIX", "users"),
			UsePathStyle:  getBoolEnv("MEDIA_PATH_STYLE", false),
			TempDir:       getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			MaxUploadSize: int64(getIntEnv("UPLOAD_MAX_BYTES", 10<<20)),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getIntEnv("RATE_LIMIT_MAX", 10),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}

	trustedProxies, err := parseTrustedProxies(getSliceEnv("TRUSTED_PROXIES", nil))
	if err != nil {
		return nil, err
	}
	cfg.Server.TrustedProxies = trustedProxies

	return cfg, nil
}

func (c *AuthConfig) validate() error {
	switch c.TokenFormat {
	case TokenFormatPaseto:
		// v4.local keys are exactly 32 bytes
		if len(c.AccessTokenSecret) != 32 {
			return fmt.Errorf("ACCESS_TOKEN_SECRET must be exactly 32 bytes, got %d", len(c.AccessTokenSecret))
		}
		if len(c.RefreshTokenSecret) != 32 {
			return fmt.Errorf("REFRESH_TOKEN_SECRET must be exactly 32 bytes, got %d", len(c.RefreshTokenSecret))
		}
	case TokenFormatJWT:
		if len(c.AccessTokenSecret) == 0 || len(c.RefreshTokenSecret) == 0 {
			return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
		}
	default:
		return fmt.Errorf("unsupported TOKEN_FORMAT %q", c.TokenFormat)
	}

	if string(c.AccessTokenSecret) == string(c.RefreshTokenSecret) {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return nil
}

// parseTrustedProxies accepts CIDR ranges ("10.0.0.0/8") and bare addresses ("192.0.2.10")
func parseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", v, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv accepts either a Go duration ("15m") or a plain number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
