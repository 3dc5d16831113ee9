package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rschick/cloud-slackbot/models"
)

// MockUserConfigsService is a mock implementation of UserConfigsService
type MockUserConfigsService struct {
	mock.Mock
}

func (m *MockUserConfigsService) GetOrCreateUserConfig(
	ctx context.Context,
	userID string,
) (*models.UserConfig, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserConfig), args.Error(1)
}

func (m *MockUserConfigsService) SetOrg(
	ctx context.Context,
	userID, org string,
) (*models.UserConfig, error) {
	args := m.Called(ctx, userID, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserConfig), args.Error(1)
}

func (m *MockUserConfigsService) SetAccessKey(
	ctx context.Context,
	userID, accessKey string,
) (*models.UserConfig, error) {
	args := m.Called(ctx, userID, accessKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserConfig), args.Error(1)
}

func (m *MockUserConfigsService) ListRegisteredUsers(ctx context.Context) ([]*models.UserConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserConfig), args.Error(1)
}

// MockCommandQueueService is a mock implementation of CommandQueueService
type MockCommandQueueService struct {
	mock.Mock
}

func (m *MockCommandQueueService) Enqueue(
	ctx context.Context,
	req models.CommandRequest,
) (*models.CommandRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommandRecord), args.Error(1)
}

func (m *MockCommandQueueService) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
