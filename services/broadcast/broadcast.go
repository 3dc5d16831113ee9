package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/rschick/cloud-slackbot/clients"
	"github.com/rschick/cloud-slackbot/services"
)

const greetingMessage = "👋 Hello from cloud-slackbot! Ask me about your services any time with `/cloud status`."

// BroadcastService periodically fans a greeting out to every registered
// user. It runs on its own cron schedule, independent of intake and
// dispatch traffic.
type BroadcastService struct {
	userConfigsService services.UserConfigsService
	slackClient        clients.SlackClient
	schedule           string
	cron               *cron.Cron
}

func NewBroadcastService(
	userConfigsService services.UserConfigsService,
	slackClient clients.SlackClient,
	schedule string,
) *BroadcastService {
	return &BroadcastService{
		userConfigsService: userConfigsService,
		slackClient:        slackClient,
		schedule:           schedule,
	}
}

// Start schedules the broadcast. The schedule is a cron spec ("@hourly" by
// default). run is the task the schedule fires; pass nil to run RunOnce
// directly, or a wrapped variant (operator alerting, metrics) to intercept
// its failures.
func (s *BroadcastService) Start(run func() error) error {
	if run == nil {
		run = func() error { return s.RunOnce(context.Background()) }
	}

	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := run(); err != nil {
			log.Printf("❌ Broadcast run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule broadcast: %w", err)
	}

	s.cron.Start()
	log.Printf("✅ Broadcast scheduled: %s", s.schedule)
	return nil
}

// Stop halts the schedule. A run already in progress completes.
func (s *BroadcastService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce posts the greeting to every registered user. One user's send
// failure must not prevent delivery to the rest, so failures are counted
// and reported only after every send was attempted.
func (s *BroadcastService) RunOnce(ctx context.Context) error {
	log.Printf("📋 Starting broadcast to registered users")

	users, err := s.userConfigsService.ListRegisteredUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list registered users: %w", err)
	}

	failures := 0
	for _, user := range users {
		if err := s.slackClient.PostDirectMessage(ctx, user.UserID, greetingMessage); err != nil {
			log.Printf("⚠️ Failed to send broadcast to user %s: %v", user.UserID, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("broadcast finished with %d failed sends out of %d users", failures, len(users))
	}

	log.Printf("📋 Completed successfully - broadcast sent to %d users", len(users))
	return nil
}
