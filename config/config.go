package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	Catalog   CatalogConfig
	Matching  MatchingConfig
	Templates TemplatesConfig
	Worker    WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins []string // "*" allows all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/eventmarket?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the offer attachments bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	AttachmentsBucket    string
	PresignExpireMinutes int
}

// CatalogConfig points at the provider catalog and match services.
type CatalogConfig struct {
	BaseURL         string
	MatchURL        string
	TimeoutMS       int
	CacheTTLSeconds int
}

// MatchingConfig selects the need matcher used by auto-invite.
type MatchingConfig struct {
	Source          string // local | remote
	DefaultTopLimit int
}

// TemplatesConfig locates the event-type category weight table.
type TemplatesConfig struct {
	WeightsFile string // empty = built-in defaults
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	InvitationSweepSeconds int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: splitTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "eventmarket"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AttachmentsBucket:    getEnv("AWS_S3_ATTACHMENTS_BUCKET", "eventmarket-offer-attachments"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Catalog: CatalogConfig{
			BaseURL:         strings.TrimRight(getEnv("CATALOG_URL", "http://localhost:4002"), "/"),
			MatchURL:        strings.TrimRight(getEnv("MATCH_URL", "http://localhost:4003"), "/"),
			TimeoutMS:       getEnvInt("CATALOG_TIMEOUT_MS", 3000),
			CacheTTLSeconds: getEnvInt("CATALOG_CACHE_TTL_SEC", 300),
		},
		Matching: MatchingConfig{
			Source:          strings.ToLower(getEnv("MATCH_SOURCE", "local")),
			DefaultTopLimit: getEnvInt("AUTO_INVITE_DEFAULT_LIMIT", 5),
		},
		Templates: TemplatesConfig{
			WeightsFile: getEnv("TEMPLATE_WEIGHTS_FILE", ""),
		},
		Worker: WorkerConfig{
			InvitationSweepSeconds: getEnvInt("INVITATION_SWEEP_SEC", 300),
		},
	}
	if cfg.Matching.Source != "local" && cfg.Matching.Source != "remote" {
		return nil, fmt.Errorf("MATCH_SOURCE must be local or remote, got %q", cfg.Matching.Source)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
