package cloud

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rschick/cloud-slackbot/models"
)

// MockCloudClient is a mock implementation of clients.CloudClient
type MockCloudClient struct {
	mock.Mock
}

func (m *MockCloudClient) ListServices(ctx context.Context) ([]models.CloudService, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CloudService), args.Error(1)
}

func (m *MockCloudClient) ListInstances(
	ctx context.Context,
	serviceName string,
) ([]models.CloudInstance, error) {
	args := m.Called(ctx, serviceName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CloudInstance), args.Error(1)
}
