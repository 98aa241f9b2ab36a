package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	// Used only to create the database
	DBAdminUser     string
	DBAdminPassword string

	RedisURL string

	// Auth
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	AdminEmail        string
	AdminPassword     string

	CORSAllowedOrigins []string

	RateLimitPerMinute int
	RateLimitBurst     int

	LogLevel string

	PhoneDefaultRegion string
	ImportMaxRows      int
	ScoreCron          string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USERNAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_DATABASE"),
		DBMaxConns: getEnvAsInt("DB_MAX_CONNS", 25),

		DBAdminUser:     getEnv("DB_ADMIN_USER", os.Getenv("DB_USERNAME")),
		DBAdminPassword: getEnv("DB_ADMIN_PASSWORD", os.Getenv("DB_PASSWORD")),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:    getEnvAsDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@workbooster.local"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 50),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		PhoneDefaultRegion: getEnv("PHONE_DEFAULT_REGION", "IN"),
		ImportMaxRows:      getEnvAsInt("IMPORT_MAX_ROWS", 5000),
		ScoreCron:          getEnv("SCORE_CRON", "0 2 * * *"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
