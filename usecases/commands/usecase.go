package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rschick/cloud-slackbot/clients"
	"github.com/rschick/cloud-slackbot/models"
	"github.com/rschick/cloud-slackbot/services"
)

// genericFailureMessage is the one message chat users see when a command
// fails for any unhandled reason. Internal error detail never leaks to the
// channel; it goes to the logs instead.
const genericFailureMessage = "⚠️ I couldn't reach Serverless Cloud with your current settings. " +
	"Please configure your organization and access key:\n" +
	"```/cloud config org <org-name>\n/cloud config key <access-key>```"

// ExecutionContext is the ephemeral per-invocation bundle handed to verbs:
// the invoking user's resolved configuration plus a cloud client bound to
// that user's org and access key (or the process defaults). It is built for
// exactly one dispatch and discarded afterwards.
type ExecutionContext struct {
	UserConfig *models.UserConfig
	Cloud      clients.CloudClient
}

type verbFunc func(ctx context.Context, args []string, req *models.CommandRequest, execCtx *ExecutionContext) error

// CommandsUseCase is the dispatch side of the pipeline: it consumes intake
// records from the command queue, routes them to verb implementations, and
// guarantees the record's removal on every outcome.
type CommandsUseCase struct {
	userConfigsService services.UserConfigsService
	queueService       services.CommandQueueService
	slackClient        clients.SlackClient
	newCloudClient     clients.CloudClientFactory
	verbs              map[string]verbFunc
}

func NewCommandsUseCase(
	userConfigsService services.UserConfigsService,
	queueService services.CommandQueueService,
	slackClient clients.SlackClient,
	newCloudClient clients.CloudClientFactory,
) *CommandsUseCase {
	u := &CommandsUseCase{
		userConfigsService: userConfigsService,
		queueService:       queueService,
		slackClient:        slackClient,
		newCloudClient:     newCloudClient,
	}
	u.verbs = map[string]verbFunc{
		"status": u.handleStatus,
		"config": u.handleConfig,
		"help":   u.handleHelp,
	}
	return u
}

// ProcessCommandRecord handles one queued command invocation end to end.
func (u *CommandsUseCase) ProcessCommandRecord(ctx context.Context, record *models.CommandRecord) error {
	log.Printf("📋 Starting to process command record %s: %q", record.Key, record.Request.Text)

	// The intake record must be released on every exit path - success,
	// handled validation notices, and unhandled verb errors alike. A
	// record left behind is re-dispatched forever. Cleanup uses a fresh
	// context so a canceled dispatch context cannot block it.
	defer func() {
		if err := u.queueService.Remove(context.Background(), record.Key); err != nil {
			log.Printf("❌ Failed to remove command record %s: %v", record.Key, err)
		}
	}()

	req := &record.Request

	userConfig, err := u.userConfigsService.GetOrCreateUserConfig(ctx, req.UserID)
	if err != nil {
		u.reportFailure(ctx, req)
		return fmt.Errorf("failed to resolve user config: %w", err)
	}

	execCtx := &ExecutionContext{
		UserConfig: userConfig,
		Cloud:      u.newCloudClient(stringValue(userConfig.Org), stringValue(userConfig.AccessKey)),
	}

	args := strings.Fields(req.Text)
	if err := u.route(ctx, args, req, execCtx); err != nil {
		log.Printf("❌ Command %q from user %s failed: %v", req.Text, req.UserID, err)
		u.reportFailure(ctx, req)
		return fmt.Errorf("failed to execute command: %w", err)
	}

	log.Printf("📋 Completed successfully - processed command record %s", record.Key)
	return nil
}

// route selects the verb implementation. An empty command is the
// zero-argument form of status; an unknown verb degrades to help.
func (u *CommandsUseCase) route(
	ctx context.Context,
	args []string,
	req *models.CommandRequest,
	execCtx *ExecutionContext,
) error {
	if len(args) == 0 {
		return u.handleStatus(ctx, args, req, execCtx)
	}

	verb, ok := u.verbs[args[0]]
	if !ok {
		log.Printf("⚠️ Unknown verb %q from user %s - showing help", args[0], req.UserID)
		return u.handleHelp(ctx, nil, req, execCtx)
	}

	return verb(ctx, args, req, execCtx)
}

func (u *CommandsUseCase) reportFailure(ctx context.Context, req *models.CommandRequest) {
	if err := u.slackClient.PostResponse(ctx, req.ResponseURL, genericFailureMessage); err != nil {
		log.Printf("❌ Failed to report command failure to user %s: %v", req.UserID, err)
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
