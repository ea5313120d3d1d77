package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string // debug, info, warn, error; empty picks by Env

	// Database selection: "postgres", "sqlite", "mongo" or "dynamodb"
	DBType string

	// SQL settings (when DBType = "postgres" or "sqlite")
	DatabaseURL string
	SQLitePath  string

	// MongoDB settings (when DBType = "mongo")
	MongoURI string
	MongoDB  string

	// DynamoDB settings (when DBType = "dynamodb")
	AWSRegion          string
	DynamoDBEndpoint   string // Optional: for local development
	AWSAccessKeyID     string // Optional: for local development
	AWSSecretAccessKey string // Optional: for local development

	// Quote drafts; empty RedisURL keeps drafts in memory
	RedisURL    string
	DraftTTLMin int

	// Timeouts
	HTTPReadTimeoutSec     int
	HTTPWriteTimeoutSec    int
	HTTPIdleTimeoutSec     int
	HTTPRequestTimeoutSec  int
	MongoConnectTimeoutSec int
	OpTimeoutMs            int

	// Campaign discount code
	Campaign Campaign

	// Cron spec for the discount expiry sweep
	ExpirySweepSchedule string

	// Security settings
	APIKey         string   // Admin API key
	AllowedOrigins []string // CORS allowed origins
	RateLimitRPM   int      // Rate limit requests per minute
}

// Campaign describes the shared promotional code refreshed on every order.
type Campaign struct {
	Code         string
	Type         string
	Value        float64
	ValidityDays int
	Products     []string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	cfg := &Config{}

	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "dev")
	cfg.LogLevel = getEnv("LOG_LEVEL", "")
	cfg.DBType = getEnv("DB_TYPE", "postgres")

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "warranty.db")

	// MongoDB settings (check both MONGODB_URI and MONGO_URI for compatibility)
	cfg.MongoURI = getEnv("MONGODB_URI", getEnv("MONGO_URI", ""))
	cfg.MongoDB = getEnv("MONGO_DB", "go_warranty")

	cfg.AWSRegion = getEnv("AWS_REGION", "eu-west-2")
	cfg.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", "") // Empty means use AWS
	cfg.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.DraftTTLMin = getEnvAsInt("DRAFT_TTL_MIN", 60*24)

	cfg.HTTPReadTimeoutSec = getEnvAsInt("HTTP_READ_TIMEOUT_SEC", 10)
	cfg.HTTPWriteTimeoutSec = getEnvAsInt("HTTP_WRITE_TIMEOUT_SEC", 10)
	cfg.HTTPIdleTimeoutSec = getEnvAsInt("HTTP_IDLE_TIMEOUT_SEC", 120)
	cfg.HTTPRequestTimeoutSec = getEnvAsInt("HTTP_REQUEST_TIMEOUT_SEC", 30)
	cfg.MongoConnectTimeoutSec = getEnvAsInt("MONGO_CONNECT_TIMEOUT_SEC", 5)
	cfg.OpTimeoutMs = getEnvAsInt("OP_TIMEOUT_MS", getEnvAsInt("MONGO_OP_TIMEOUT_MS", 2000))

	cfg.Campaign = Campaign{
		Code:         strings.ToUpper(getEnv("CAMPAIGN_CODE", "EMAIL25SAVE")),
		Type:         getEnv("CAMPAIGN_TYPE", "fixed"),
		Value:        getEnvAsFloat("CAMPAIGN_VALUE", 25),
		ValidityDays: getEnvAsInt("CAMPAIGN_VALIDITY_DAYS", 30),
		Products:     getEnvAsSlice("CAMPAIGN_PRODUCTS", nil),
	}
	cfg.ExpirySweepSchedule = getEnv("EXPIRY_SWEEP_SCHEDULE", "@hourly")

	cfg.APIKey = getEnv("API_KEY", "")
	cfg.AllowedOrigins = getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"})
	cfg.RateLimitRPM = getEnvAsInt("RATE_LIMIT_RPM", 100)

	switch cfg.DBType {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when DB_TYPE=mongo")
		}
	case "sqlite", "dynamodb":
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	if cfg.Campaign.Code == "" {
		return nil, fmt.Errorf("CAMPAIGN_CODE must not be empty")
	}
	if cfg.Campaign.ValidityDays <= 0 {
		return nil, fmt.Errorf("CAMPAIGN_VALIDITY_DAYS must be > 0")
	}

	// In production, API_KEY must be explicitly set
	if cfg.Env == "prod" && cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required in production environment")
	}

	// Default API key for development only
	if cfg.APIKey == "" {
		cfg.APIKey = "dev-admin-key"
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	valStr := os.Getenv(key)
	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	// Split by comma and trim whitespace
	var result []string
	for _, s := range strings.Split(valStr, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
