package userconfigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rschick/cloud-slackbot/testutils"
)

func setupUserConfigsService() (*UserConfigsService, *testutils.MemoryStore) {
	store := testutils.NewMemoryStore()
	return NewUserConfigsService(store), store
}

func TestUserConfigsService(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreateUserConfig", func(t *testing.T) {
		t.Run("CreatesMinimalRecord", func(t *testing.T) {
			service, store := setupUserConfigsService()
			userID := testutils.NewTestUserID()

			config, err := service.GetOrCreateUserConfig(ctx, userID)
			require.NoError(t, err)

			assert.Equal(t, userID, config.UserID)
			assert.Nil(t, config.Org)
			assert.Nil(t, config.AccessKey)

			// Registered under the users: label for broadcast enumeration
			records, err := store.ListByLabelPrefix(ctx, "users:user_")
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "user_"+userID, records[0].Key)
			assert.Equal(t, "users:user_"+userID, records[0].Label)
		})

		t.Run("DoesNotClobberConfiguredFields", func(t *testing.T) {
			service, _ := setupUserConfigsService()
			userID := testutils.NewTestUserID()

			_, err := service.SetOrg(ctx, userID, "acme")
			require.NoError(t, err)
			_, err = service.SetAccessKey(ctx, userID, "sk-123")
			require.NoError(t, err)

			config, err := service.GetOrCreateUserConfig(ctx, userID)
			require.NoError(t, err)

			require.NotNil(t, config.Org)
			assert.Equal(t, "acme", *config.Org)
			require.NotNil(t, config.AccessKey)
			assert.Equal(t, "sk-123", *config.AccessKey)
		})

		t.Run("EmptyUserID", func(t *testing.T) {
			service, _ := setupUserConfigsService()

			_, err := service.GetOrCreateUserConfig(ctx, "")
			require.Error(t, err)
			assert.Equal(t, "user_id cannot be empty", err.Error())
		})
	})

	t.Run("SetOrgThenSetAccessKey", func(t *testing.T) {
		// The two partial updates must merge; order must not matter.
		orders := []struct {
			name  string
			steps []func(service *UserConfigsService, userID string) error
		}{
			{
				name: "OrgFirst",
				steps: []func(service *UserConfigsService, userID string) error{
					func(s *UserConfigsService, id string) error { _, err := s.SetOrg(ctx, id, "acme"); return err },
					func(s *UserConfigsService, id string) error { _, err := s.SetAccessKey(ctx, id, "sk-123"); return err },
				},
			},
			{
				name: "KeyFirst",
				steps: []func(service *UserConfigsService, userID string) error{
					func(s *UserConfigsService, id string) error { _, err := s.SetAccessKey(ctx, id, "sk-123"); return err },
					func(s *UserConfigsService, id string) error { _, err := s.SetOrg(ctx, id, "acme"); return err },
				},
			},
		}

		for _, order := range orders {
			t.Run(order.name, func(t *testing.T) {
				service, _ := setupUserConfigsService()
				userID := testutils.NewTestUserID()

				for _, step := range order.steps {
					require.NoError(t, step(service, userID))
				}

				config, err := service.GetOrCreateUserConfig(ctx, userID)
				require.NoError(t, err)

				assert.Equal(t, userID, config.UserID)
				require.NotNil(t, config.Org)
				assert.Equal(t, "acme", *config.Org)
				require.NotNil(t, config.AccessKey)
				assert.Equal(t, "sk-123", *config.AccessKey)
			})
		}
	})

	t.Run("SetOrgOverwritesPreviousOrg", func(t *testing.T) {
		service, _ := setupUserConfigsService()
		userID := testutils.NewTestUserID()

		_, err := service.SetOrg(ctx, userID, "acme")
		require.NoError(t, err)

		config, err := service.SetOrg(ctx, userID, "globex")
		require.NoError(t, err)

		require.NotNil(t, config.Org)
		assert.Equal(t, "globex", *config.Org)
	})

	t.Run("ListRegisteredUsers", func(t *testing.T) {
		t.Run("EnumeratesAllUsers", func(t *testing.T) {
			service, _ := setupUserConfigsService()

			ids := []string{
				testutils.NewTestUserID(),
				testutils.NewTestUserID(),
				testutils.NewTestUserID(),
			}
			for _, id := range ids {
				_, err := service.GetOrCreateUserConfig(ctx, id)
				require.NoError(t, err)
			}

			users, err := service.ListRegisteredUsers(ctx)
			require.NoError(t, err)
			require.Len(t, users, 3)

			seen := map[string]bool{}
			for _, user := range users {
				seen[user.UserID] = true
			}
			for _, id := range ids {
				assert.True(t, seen[id], "expected user %s in registry", id)
			}
		})

		t.Run("EmptyRegistry", func(t *testing.T) {
			service, _ := setupUserConfigsService()

			users, err := service.ListRegisteredUsers(ctx)
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	})
}
