package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type SlackConfig struct {
	SigningSecret   string
	BotToken        string
	SlashCommand    string
	AlertWebhookURL string
}

// IsConfigured returns true if all required Slack configuration is present
func (c SlackConfig) IsConfigured() bool {
	return c.SigningSecret != "" && c.BotToken != ""
	// Note: AlertWebhookURL is optional
}

type CloudConfig struct {
	Stage     string
	OrgName   string
	AccessKey string
}

// IsConfigured returns true if the process-level cloud defaults are present.
// Users can still override org and access key per user via `config`.
func (c CloudConfig) IsConfigured() bool {
	return c.OrgName != "" && c.AccessKey != ""
}

type AppConfig struct {
	DatabaseURL    string
	DatabaseSchema string

	SlackConfig SlackConfig
	CloudConfig CloudConfig

	// QueuePollInterval is how often the command queue scans for newly
	// persisted intake records.
	QueuePollInterval time.Duration

	// BroadcastSchedule is a cron spec for the registered-users broadcast.
	BroadcastSchedule string

	Port            string
	Environment     string
	UseStrictConfig bool
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	pollInterval, err := time.ParseDuration(getEnvWithDefault("QUEUE_POLL_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_POLL_INTERVAL: %w", err)
	}

	config := &AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
		SlackConfig: SlackConfig{
			SigningSecret:   os.Getenv("SLACK_SIGNING_SECRET"),
			BotToken:        os.Getenv("SLACK_BOT_TOKEN"),
			SlashCommand:    getEnvWithDefault("SLACK_SLASH_COMMAND", "/cloud"),
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},
		CloudConfig: CloudConfig{
			Stage:     os.Getenv("CLOUD_STAGE"),
			OrgName:   os.Getenv("CLOUD_ORG_NAME"),
			AccessKey: os.Getenv("CLOUD_ACCESS_KEY"),
		},
		QueuePollInterval: pollInterval,
		BroadcastSchedule: getEnvWithDefault("BROADCAST_SCHEDULE", "@hourly"),
		Port:              getEnvWithDefault("PORT", "3000"),
		Environment:       getEnvWithDefault("ENVIRONMENT", "dev"),
		UseStrictConfig:   mustParseBool(getEnvWithDefault("USE_STRICT_CONFIG", "false")),
	}

	if config.SlackConfig.IsConfigured() {
		log.Printf("✅ Slack integration configured")
	} else {
		log.Printf("⚠️ Slack integration not configured - webhook intake and broadcasts will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("slack integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.CloudConfig.IsConfigured() {
		log.Printf("✅ Cloud API defaults configured")
	} else {
		log.Printf("⚠️ Cloud API defaults not configured - users must run `config org` and `config key` first")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("cloud API defaults are not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustParseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}
