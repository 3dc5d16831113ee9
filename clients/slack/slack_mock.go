package slack

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSlackClient is a mock implementation of clients.SlackClient
type MockSlackClient struct {
	mock.Mock
}

func (m *MockSlackClient) PostResponse(ctx context.Context, responseURL, markdown string) error {
	args := m.Called(ctx, responseURL, markdown)
	return args.Error(0)
}

func (m *MockSlackClient) PostDirectMessage(ctx context.Context, userID, text string) error {
	args := m.Called(ctx, userID, text)
	return args.Error(0)
}
