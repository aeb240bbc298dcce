package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration read from the environment.
type Server struct {
	Addr        string
	Environment string
	LogLevel    slog.Level
	DatabaseURL string

	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Generator GeneratorConfig

	// PrincipalCacheTTL bounds how long a resolved principal may be served
	// from Redis after a profile or clinic change.
	PrincipalCacheTTL time.Duration
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
}

// RedisConfig holds the Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// GeneratorConfig selects the document generation backend.
type GeneratorConfig struct {
	Kind          string // template | openai
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

const (
	GeneratorTemplate = "template"
	GeneratorOpenAI   = "openai"

	devSigningKey = "dev-secret-key-change-in-production"
)

// IsProduction reports whether the process runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// UsesPostgres reports whether durable stores are configured.
func (s Server) UsesPostgres() bool {
	return s.DatabaseURL != ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envOr("ACCREDIS_ADDR", ":8080"),
		Environment: envOr("ENV", "development"),
		LogLevel:    SlogLevel(os.Getenv("LOG_LEVEL")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Auth: AuthConfig{
			JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
			JWTIssuer:     envOr("JWT_ISSUER", "accredis"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		CORS: CORSConfig{AllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))},
		Generator: GeneratorConfig{
			Kind:          envOr("GENERATOR", GeneratorTemplate),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
	}

	var err error
	if cfg.RateLimit.RequestsPerSecond, err = envFloat("RATE_LIMIT_RPS", 20); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Burst, err = envInt("RATE_LIMIT_BURST", 40); err != nil {
		return Server{}, err
	}
	if cfg.PrincipalCacheTTL, err = envDuration("PRINCIPAL_CACHE_TTL", time.Minute); err != nil {
		return Server{}, err
	}

	if cfg.Auth.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required in production")
		}
		cfg.Auth.JWTSigningKey = devSigningKey
	}

	switch cfg.Generator.Kind {
	case GeneratorTemplate:
	case GeneratorOpenAI:
		if cfg.Generator.OpenAIAPIKey == "" {
			return Server{}, fmt.Errorf("OPENAI_API_KEY is required when GENERATOR=openai")
		}
	default:
		return Server{}, fmt.Errorf("GENERATOR must be %q or %q, got %q", GeneratorTemplate, GeneratorOpenAI, cfg.Generator.Kind)
	}

	return cfg, nil
}

// SlogLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func SlogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, v)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
