package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	Auth0Domain   string
	APIAudience   string
	Algorithms    []string
	AllowedOrigin string

	JWKSCacheTTL     time.Duration
	JWKSFetchTimeout time.Duration

	// Учитывать ли недоплату за прошлый месяц при расчете статуса
	BillingCheckArrears bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("📋 No .env file found, reading configuration from environment")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvAsInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "student_track_app_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		APIAudience:   getEnv("API_AUDIENCE", ""),
		Algorithms:    getEnvAsList("ALGORITHMS", "RS256"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		JWKSCacheTTL:     time.Duration(getEnvAsInt("JWKS_CACHE_TTL", 600)) * time.Second,
		JWKSFetchTimeout: time.Duration(getEnvAsInt("JWKS_FETCH_TIMEOUT", 10)) * time.Second,

		BillingCheckArrears: getEnvAsBool("BILLING_CHECK_ARREARS", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)

	var list []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
