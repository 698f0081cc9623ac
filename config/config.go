package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost           string
	DBPort           string
	DBName           string
	DBUser           string
	DBPassword       string
	ServerPort       string
	Environment      string
	AuthMode         string // "none" (dev auto-login) or "jwt"
	JWTSecret        string
	CloudinaryURL    string
	NotifyWebhookURL string
}

var AppConfig *Config

func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue without it
	}

	AppConfig = &Config{
		DBHost:           getEnv("DB_HOST", "127.0.0.1"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBName:           getEnv("DB_NAME", "crm"),
		DBUser:           getEnv("DB_USER", "crm"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		ServerPort:       getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		AuthMode:         getEnv("AUTH_MODE", "none"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
	}

	return nil
}

// DatabaseDSN builds the MySQL DSN from the individual settings.
func (c *Config) DatabaseDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
