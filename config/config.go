package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	MongoURI          string
	MongoDB           string
	RedisURL          string
	KafkaBrokers      string
	KafkaSalesTopic   string
	JWTSecret         string
	TaxRate           string
	LowStockThreshold int
	CartTTL           time.Duration
	SeedDemoData      bool
}

// Load reads configuration from the environment, picking up a local .env
// file when one exists. MongoURI and RedisURL may be empty, in which case
// the service runs fully in-memory (demo mode).
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env file")
	}

	return Config{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          getEnv("MONGO_URI", ""),
		MongoDB:           getEnv("MONGO_DB", "pos"),
		RedisURL:          getEnv("REDIS_URL", ""),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", ""),
		KafkaSalesTopic:   getEnv("KAFKA_SALES_TOPIC", "pos.sales.completed"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		TaxRate:           getEnv("TAX_RATE", "0.08"),
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 10),
		CartTTL:           getEnvDuration("CART_TTL", 12*time.Hour),
		SeedDemoData:      getEnv("SEED_DEMO_DATA", "true") == "true",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
