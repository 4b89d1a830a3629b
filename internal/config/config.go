package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"aetherlink-be/internal/logger"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	AppEnv            string // development, production or test
	Port              string
	DatabaseURL       string // empty selects the in-memory repositories
	RedisURL          string
	FrontendURL       string // public site base, used for QR codes
	JWTSecret         string
	JWTTTL            int      // token lifetime in hours
	AllowedOrigins    []string // explicit CORS allow-list
	DeployEnv         string   // unset, preview, development or anything else
	PreviewHostSuffix string
	InternalAPIToken  string // enables the credential lookup route when set
	GlobalRateRPS     float64
	GlobalRateBurst   int
	LogLevel          string
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("No .env file found, using environment variables or defaults")
	}

	return &Config{
		AppEnv:            getEnv("APP_ENV", EnvDevelopment),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		JWTSecret:         getEnv("AUTH_SECRET", getEnv("JWT_SECRET", "")),
		JWTTTL:            getEnvInt("JWT_TTL_HOURS", 24),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS"),
		DeployEnv:         getEnv("DEPLOY_ENV", getEnv("VERCEL_ENV", "")),
		PreviewHostSuffix: getEnv("PREVIEW_HOST_SUFFIX", ".vercel.app"),
		InternalAPIToken:  getEnv("INTERNAL_API_TOKEN", ""),
		GlobalRateRPS:     getEnvFloat("GLOBAL_RATE_LIMIT_RPS", 0),
		GlobalRateBurst:   getEnvInt("GLOBAL_RATE_LIMIT_BURST", 0),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.AppEnv != EnvTest {
		return errors.New("AUTH_SECRET environment variable is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, trimming entries and dropping
// empty ones. An unset variable yields nil.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
