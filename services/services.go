package services

import (
	"context"

	"github.com/rschick/cloud-slackbot/models"
)

// UserConfigsService manages the per-user configuration registry: one
// idempotently upserted record per Slack user, labeled so the full set of
// registered users can be enumerated without knowing individual keys.
type UserConfigsService interface {
	// GetOrCreateUserConfig ensures a config record exists for the user,
	// setting at minimum the user_id field without disturbing any
	// previously configured org or access key.
	GetOrCreateUserConfig(ctx context.Context, userID string) (*models.UserConfig, error)
	SetOrg(ctx context.Context, userID, org string) (*models.UserConfig, error)
	SetAccessKey(ctx context.Context, userID, accessKey string) (*models.UserConfig, error)
	ListRegisteredUsers(ctx context.Context) ([]*models.UserConfig, error)
}

// CommandQueueService is the durable intake queue's write-side contract.
// Enqueue is the intake handler's single store write; Remove is the
// dispatcher's unconditional cleanup of a processed record.
type CommandQueueService interface {
	Enqueue(ctx context.Context, req models.CommandRequest) (*models.CommandRecord, error)
	Remove(ctx context.Context, key string) error
}
