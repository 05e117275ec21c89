package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetDurationEnv parses values such as "30s" or "24h".
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// Server holds the HTTP and business settings read at startup.
type Server struct {
	Port           string
	CORSOrigins    string
	JWTSecret      string
	StripeKey      string
	Currency       string
	QuoteRPS       float64
	QuoteBurst     int
	OrderRateMax   int
	IdempotencyTTL time.Duration
}

// LoadServer reads the server settings from the environment.
func LoadServer() Server {
	return Server{
		Port:           GetEnv("PORT", "3000"),
		CORSOrigins:    GetEnv("CORS_ORIGINS", "http://localhost:8081"),
		JWTSecret:      GetEnv("JWT_SECRET", ""),
		StripeKey:      GetEnv("STRIPE_SECRET_KEY", ""),
		Currency:       GetEnv("CURRENCY", "usd"),
		QuoteRPS:       GetFloatEnv("FEE_QUOTE_RPS", 10),
		QuoteBurst:     GetIntEnv("FEE_QUOTE_BURST", 20),
		OrderRateMax:   GetIntEnv("ORDER_RATE_MAX", 10),
		IdempotencyTTL: GetDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}
