package slack

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/rschick/cloud-slackbot/clients"
)

// SlackClient implements the clients.SlackClient interface using the
// slack-go/slack SDK.
type SlackClient struct {
	api *slack.Client
}

var _ clients.SlackClient = (*SlackClient)(nil)

// NewSlackClient creates a new Slack client with the provided bot token
func NewSlackClient(botToken string) *SlackClient {
	return &SlackClient{api: slack.New(botToken)}
}

// PostResponse posts a markdown-formatted reply to a slash command's
// response URL. The reply replaces any prior placeholder message and
// carries the markdown as plain-text fallback.
func (c *SlackClient) PostResponse(ctx context.Context, responseURL, markdown string) error {
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, markdown, false, false),
		nil, nil,
	)

	msg := &slack.WebhookMessage{
		ReplaceOriginal: true,
		Text:            markdown,
		Blocks:          &slack.Blocks{BlockSet: []slack.Block{section}},
	}

	return slack.PostWebhookContext(ctx, responseURL, msg)
}

// PostDirectMessage posts a plain message addressed to a user ID.
func (c *SlackClient) PostDirectMessage(ctx context.Context, userID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, userID, slack.MsgOptionText(text, false))
	return err
}
