package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	// PushTopicARNPrefix + topic name yields the SNS topic ARN for an
	// audience, e.g. "arn:aws:sns:us-east-1:123456789012:" + "all_users".
	PushTopicARNPrefix string
	PushDefaultTopic   string
	PushTimeout        time.Duration

	AdminToken string

	LogLevel  string
	LogFormat string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Books         string
	Quizzes       string
	Questions     string
	Notifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Books:         getEnv("DYNAMO_TABLE_BOOKS", "books"),
			Quizzes:       getEnv("DYNAMO_TABLE_QUIZZES", "quizzes"),
			Questions:     getEnv("DYNAMO_TABLE_QUESTIONS", "questions"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "libraria-covers"),

		PushTopicARNPrefix: getEnv("PUSH_TOPIC_ARN_PREFIX", ""),
		PushDefaultTopic:   getEnv("PUSH_DEFAULT_TOPIC", "all_users"),
		PushTimeout:        getEnvDuration("PUSH_TIMEOUT", 10*time.Second),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
