package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	RedisAddr     string
	RedisPassword string

	// CatalogBackend is "mongo" or "postgres"; the catalog is mid-migration
	// from the document store to the relational one.
	CatalogBackend string

	MongoURI    string
	MongoDBName string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDBName   string
	MigrationsPath   string

	// KafkaBrokers empty disables the order-placed publisher.
	KafkaBrokers []string

	RateSourceURL string
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CatalogBackend: getEnv("CATALOG_BACKEND", "mongo"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "skyflo"),

		PostgresHost:     getEnv("DB_HOST", "localhost"),
		PostgresUser:     getEnv("DB_USER", "postgres"),
		PostgresPassword: getEnv("DB_PASSWORD", "postgres"),
		PostgresDBName:   getEnv("DB_NAME", "skyflo"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "./internal/catalog/migrations"),

		RateSourceURL: getEnv("RATE_SOURCE_URL", "https://open.er-api.com/v6/latest/USD"),
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}
	cfg.PostgresPort = port

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
