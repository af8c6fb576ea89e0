package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	PostgresURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey   string
	EmbeddingModel string

	// Worker
	WorkerID         string
	WorkerMax        int
	WorkerBatchSize  int
	WorkerChanSize   int
	WorkerMaxRetries int

	// Consumer (Redis Stream)
	ConsumerGroup string

	// Recommendation cache
	RecommendationTTL time.Duration

	// Similar-user refresh scheduler
	SchedulerEnabled    bool
	RefreshInterval     time.Duration
	RefreshStalenessSec int64
	RefreshBatchSize    int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		PostgresURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "marketplace"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),

		// Worker
		WorkerID:         getEnv("WORKER_ID", generateWorkerID()),
		WorkerMax:        getEnvInt("WORKER_MAX", 10),
		WorkerBatchSize:  getEnvInt("WORKER_BATCH_SIZE", 10),
		WorkerChanSize:   getEnvInt("WORKER_CHAN_SIZE", 100),
		WorkerMaxRetries: getEnvInt("WORKER_MAX_RETRIES", 3),

		// Consumer
		ConsumerGroup: getEnv("CONSUMER_GROUP", "market-workers"),

		// Recommendation cache
		RecommendationTTL: time.Duration(getEnvInt("RECOMMENDATION_TTL_MIN", 10)) * time.Minute,

		// Scheduler
		SchedulerEnabled:    getEnvBool("SCHEDULER_ENABLED", true),
		RefreshInterval:     time.Duration(getEnvInt("REFRESH_INTERVAL_MIN", 10)) * time.Minute,
		RefreshStalenessSec: int64(getEnvInt("REFRESH_STALENESS_SEC", 86400)),
		RefreshBatchSize:    getEnvInt("REFRESH_BATCH_SIZE", 100),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
