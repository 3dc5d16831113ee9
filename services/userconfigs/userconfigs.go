package userconfigs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/rschick/cloud-slackbot/db"
	"github.com/rschick/cloud-slackbot/models"
)

// Key scheme: config records are keyed user_<userID> and labeled
// users:user_<userID>, so the registered-users set is one label scan away.
const (
	userKeyPrefix   = "user_"
	userLabelPrefix = "users:"
)

func userKey(userID string) string {
	return userKeyPrefix + userID
}

func userLabel(userID string) string {
	return userLabelPrefix + userKey(userID)
}

type UserConfigsService struct {
	store db.Store
}

func NewUserConfigsService(store db.Store) *UserConfigsService {
	return &UserConfigsService{store: store}
}

// GetOrCreateUserConfig idempotently upserts the user's config record with
// at minimum the user_id field. The store-side merge guarantees an existing
// org or access key is never clobbered.
func (s *UserConfigsService) GetOrCreateUserConfig(
	ctx context.Context,
	userID string,
) (*models.UserConfig, error) {
	log.Printf("📋 Starting to get or create user config for user: %s", userID)

	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}

	config, err := s.merge(ctx, userID, models.UserConfig{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user config: %w", err)
	}

	log.Printf("📋 Completed successfully - resolved config for user: %s", config.UserID)
	return config, nil
}

func (s *UserConfigsService) SetOrg(ctx context.Context, userID, org string) (*models.UserConfig, error) {
	log.Printf("📋 Starting to set org for user: %s", userID)

	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if org == "" {
		return nil, fmt.Errorf("org cannot be empty")
	}

	config, err := s.merge(ctx, userID, models.UserConfig{UserID: userID, Org: &org})
	if err != nil {
		return nil, fmt.Errorf("failed to set org: %w", err)
	}

	log.Printf("📋 Completed successfully - set org for user: %s", userID)
	return config, nil
}

func (s *UserConfigsService) SetAccessKey(
	ctx context.Context,
	userID, accessKey string,
) (*models.UserConfig, error) {
	log.Printf("📋 Starting to set access key for user: %s", userID)

	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if accessKey == "" {
		return nil, fmt.Errorf("access key cannot be empty")
	}

	config, err := s.merge(ctx, userID, models.UserConfig{UserID: userID, AccessKey: &accessKey})
	if err != nil {
		return nil, fmt.Errorf("failed to set access key: %w", err)
	}

	log.Printf("📋 Completed successfully - set access key for user: %s", userID)
	return config, nil
}

// ListRegisteredUsers enumerates every user config via the label index.
func (s *UserConfigsService) ListRegisteredUsers(ctx context.Context) ([]*models.UserConfig, error) {
	log.Printf("📋 Starting to list registered users")

	records, err := s.store.ListByLabelPrefix(ctx, userLabelPrefix+userKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered users: %w", err)
	}

	configs := []*models.UserConfig{}
	for _, record := range records {
		config := &models.UserConfig{}
		if err := json.Unmarshal(record.Value, config); err != nil {
			log.Printf("⚠️ Skipping malformed user config record %s: %v", record.Key, err)
			continue
		}
		configs = append(configs, config)
	}

	log.Printf("📋 Completed successfully - found %d registered users", len(configs))
	return configs, nil
}

// merge performs a partial upsert of the given fields and decodes the
// resulting record.
func (s *UserConfigsService) merge(
	ctx context.Context,
	userID string,
	partial models.UserConfig,
) (*models.UserConfig, error) {
	value, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user config: %w", err)
	}

	record, err := s.store.Merge(ctx, userKey(userID), userLabel(userID), value)
	if err != nil {
		return nil, err
	}

	config := &models.UserConfig{}
	if err := json.Unmarshal(record.Value, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user config: %w", err)
	}

	return config, nil
}
