package testutils

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// TestDBConfig carries the connection settings for integration tests that
// talk to a real Postgres instance.
type TestDBConfig struct {
	DatabaseURL    string
	DatabaseSchema string
}

// LoadTestDBConfig loads database settings for integration tests from
// environment variables. Tests that need a live database should skip when
// this returns an error.
func LoadTestDBConfig() (*TestDBConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From package directories
	_ = godotenv.Load("../../.env.test")
	_ = godotenv.Load(".env.test")
	_ = godotenv.Load()

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &TestDBConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// NewTestUserID generates a unique Slack-shaped user ID so concurrent test
// runs never collide on the same config record.
func NewTestUserID() string {
	return "UTEST" + uuid.New().String()[:8]
}
