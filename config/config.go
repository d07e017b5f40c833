package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Admin     AdminConfig
	Session   SessionConfig
	AWS       AWSConfig
	YouTube   YouTubeConfig
	Reconcile ReconcileConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/memorial?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings for the job queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminConfig holds the single admin identity and the legacy static key.
type AdminConfig struct {
	Username     string
	Password     string // plain comparison (constant-time) when hash not set
	PasswordHash string // bcrypt hash; takes precedence over Password
	StaticKey    string // x-admin-key fallback header value; empty disables it
}

// SessionConfig holds session token signing and expiry settings.
type SessionConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the media bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	PresignExpireMinutes int
}

// YouTubeConfig holds OAuth credentials for the video publishing pipeline.
// When any field is empty, publishing is disabled without error.
type YouTubeConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// ReconcileConfig controls the periodic re-scan of videos stuck in processing.
type ReconcileConfig struct {
	IntervalMinutes int
	AgeMinutes      int
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

// Enabled reports whether all YouTube credentials are configured.
func (c YouTubeConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout: getEnvInt("WRITE_TIMEOUT_SEC", 30),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "memorial"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", ""),
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			StaticKey:    getEnv("ADMIN_KEY", ""),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("SESSION_EXPIRE_HOURS", 8),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:          getEnv("MEDIA_BUCKET", "memorial-media-bucket"),
			PresignExpireMinutes: getEnvInt("PRESIGN_EXPIRE_MINUTES", 5),
		},
		YouTube: YouTubeConfig{
			ClientID:     getEnv("YOUTUBE_CLIENT_ID", ""),
			ClientSecret: getEnv("YOUTUBE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("YOUTUBE_REFRESH_TOKEN", ""),
		},
		Reconcile: ReconcileConfig{
			IntervalMinutes: getEnvInt("RECONCILE_INTERVAL_MINUTES", 30),
			AgeMinutes:      getEnvInt("RECONCILE_AGE_MINUTES", 60),
		},
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

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
