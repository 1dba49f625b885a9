package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Proximity ProximityConfig
}

type AppConfig struct {
	Env  string
	Port string
	URL  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint    string
	PresignHost string // Host to use in presigned URLs (for browser access)
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	PublicURL   string
}

// JWTConfig holds the shared secret of the auth provider that issues access
// tokens. Tokens are validated here, never issued to end users.
type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

type CORSConfig struct {
	Origins []string
}

type LogConfig struct {
	Level string
	File  string
}

type ProximityConfig struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	Cooldown        time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, _ := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "1h"))
	cooldown, _ := time.ParseDuration(getEnv("PROXIMITY_COOLDOWN", "6h"))

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnv("APP_PORT", "8080"),
			URL:  getEnv("APP_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "travellinq"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "travellinq"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PresignHost: getEnv("MINIO_PRESIGN_HOST", "localhost:9000"),
			AccessKey:   getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:   getEnv("MINIO_SECRET_KEY", ""),
			Bucket:      getEnv("MINIO_BUCKET", "travellinq"),
			UseSSL:      getEnvBool("MINIO_USE_SSL", false),
			PublicURL:   getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000/travellinq"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			Issuer:       getEnv("JWT_ISSUER", "travellinq"),
			AccessExpiry: accessExpiry,
		},
		CORS: CORSConfig{
			Origins: splitOrigins(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "server.log"),
		},
		Proximity: ProximityConfig{
			DefaultRadiusKm: getEnvFloat("PROXIMITY_DEFAULT_RADIUS_KM", 10),
			MaxRadiusKm:     getEnvFloat("PROXIMITY_MAX_RADIUS_KM", 200),
			Cooldown:        cooldown,
		},
	}

	// Validate critical configuration
	if cfg.App.Env == "production" && cfg.JWT.Secret == "" {
		return nil, errors.New("JWT secret must be configured in production environment")
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var normalized []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimSuffix(o, "/")
		if o != "" {
			normalized = append(normalized, o)
		}
	}
	return normalized
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
