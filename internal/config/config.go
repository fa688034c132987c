package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppName     string
	DatabaseURL string

	JWTSecret   string
	JWTExpiry   time.Duration
	JWTIssuer   string
	AdminEmail  string
	AdminPasswd string

	// Telemetry (OTLP over HTTP). Disabled unless OTEL_ENABLED=true.
	OtelEnabled  bool
	OtelEndpoint string
	ServiceName  string

	// Serves /metrics for a Prometheus scrape when PROMETHEUS_ENABLED=true.
	PrometheusEnabled bool
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	return Config{
		Port:        getEnv("PORT", "3000"),
		AppName:     getEnv("APP_NAME", "POS Core v1.0"),
		DatabaseURL: databaseURL(),

		JWTSecret:   getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiry:   time.Duration(getEnvInt("JWT_EXPIRES_HOURS", 24)) * time.Hour,
		JWTIssuer:   getEnv("JWT_ISSUER", "go-pos-ws"),
		AdminEmail:  getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPasswd: getEnv("ADMIN_PASSWORD", "admin123"),

		OtelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		ServiceName:  getEnv("SERVICE_NAME", "pos-core"),

		PrometheusEnabled: getEnvBool("PROMETHEUS_ENABLED", false),
	}
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "pos"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_TIMEZONE", "Asia/Jakarta"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
