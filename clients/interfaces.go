package clients

import (
	"context"

	"github.com/rschick/cloud-slackbot/models"
)

// CloudClient is the typed wrapper over the cloud management API. All
// failures surface as *CloudAPIError.
type CloudClient interface {
	ListServices(ctx context.Context) ([]models.CloudService, error)
	ListInstances(ctx context.Context, serviceName string) ([]models.CloudInstance, error)
}

// CloudClientFactory builds a CloudClient bound to one organization and
// access key. The factory, not the call sites, owns the fallback to
// process-level defaults when a user has not configured their own.
type CloudClientFactory func(orgName, accessKey string) CloudClient

// SlackClient covers the two outbound Slack surfaces the bot uses: the
// per-invocation response callback and direct messages for broadcasts.
type SlackClient interface {
	// PostResponse posts a markdown reply to a slash command's response
	// URL, replacing any prior placeholder message.
	PostResponse(ctx context.Context, responseURL, markdown string) error
	// PostDirectMessage posts a plain message addressed to a user ID.
	PostDirectMessage(ctx context.Context, userID, text string) error
}
