package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rschick/cloud-slackbot/models"
)

const dashboardBaseURL = "https://cloud.serverless.com"

const helpMessage = "Available commands:\n" +
	"```/cloud status\n" +
	"/cloud status <service-name>\n" +
	"/cloud config org <org-name>\n" +
	"/cloud config key <access-key>\n" +
	"/cloud help```"

// handleStatus renders the organization's services and their instances.
// With a service name it narrows to that one service's instances.
func (u *CommandsUseCase) handleStatus(
	ctx context.Context,
	args []string,
	req *models.CommandRequest,
	execCtx *ExecutionContext,
) error {
	if len(args) > 1 {
		return u.statusForService(ctx, args[1], req, execCtx)
	}

	services, err := execCtx.Cloud.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	if len(services) == 0 {
		return u.slackClient.PostResponse(ctx, req.ResponseURL,
			fmt.Sprintf("No services found for org *%s*", orgName(execCtx)))
	}

	var sections []string
	for _, service := range services {
		instances, err := execCtx.Cloud.ListInstances(ctx, service.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to list instances for service %s: %w", service.ServiceName, err)
		}
		sections = append(sections, renderService(orgName(execCtx), service.ServiceName, instances))
	}

	return u.slackClient.PostResponse(ctx, req.ResponseURL, strings.Join(sections, "\n"))
}

func (u *CommandsUseCase) statusForService(
	ctx context.Context,
	serviceName string,
	req *models.CommandRequest,
	execCtx *ExecutionContext,
) error {
	instances, err := execCtx.Cloud.ListInstances(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to list instances for service %s: %w", serviceName, err)
	}

	if len(instances) == 0 {
		return u.slackClient.PostResponse(ctx, req.ResponseURL,
			fmt.Sprintf("No instances found for service *%s*", serviceName))
	}

	return u.slackClient.PostResponse(ctx, req.ResponseURL,
		renderService(orgName(execCtx), serviceName, instances))
}

// handleConfig upserts one configuration field. An invalid field name is a
// user-facing notice followed by help, never a fault.
func (u *CommandsUseCase) handleConfig(
	ctx context.Context,
	args []string,
	req *models.CommandRequest,
	execCtx *ExecutionContext,
) error {
	if len(args) < 3 {
		return u.invalidConfig(ctx, req, execCtx)
	}

	field, value := args[1], args[2]
	switch field {
	case "org":
		if _, err := u.userConfigsService.SetOrg(ctx, req.UserID, value); err != nil {
			return fmt.Errorf("failed to save org: %w", err)
		}
		return u.slackClient.PostResponse(ctx, req.ResponseURL,
			fmt.Sprintf("✅ Saved organization *%s*", value))
	case "key":
		if _, err := u.userConfigsService.SetAccessKey(ctx, req.UserID, value); err != nil {
			return fmt.Errorf("failed to save access key: %w", err)
		}
		return u.slackClient.PostResponse(ctx, req.ResponseURL, "✅ Saved access key")
	default:
		return u.invalidConfig(ctx, req, execCtx)
	}
}

func (u *CommandsUseCase) invalidConfig(
	ctx context.Context,
	req *models.CommandRequest,
	execCtx *ExecutionContext,
) error {
	if err := u.slackClient.PostResponse(ctx, req.ResponseURL,
		"Invalid command - use `config org <org-name>` or `config key <access-key>`"); err != nil {
		return err
	}
	return u.handleHelp(ctx, nil, req, execCtx)
}

// handleHelp posts the fixed command list. It takes no arguments and only
// fails if the response callback itself is unreachable.
func (u *CommandsUseCase) handleHelp(
	ctx context.Context,
	_ []string,
	req *models.CommandRequest,
	_ *ExecutionContext,
) error {
	return u.slackClient.PostResponse(ctx, req.ResponseURL, helpMessage)
}

func renderService(org, serviceName string, instances []models.CloudInstance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", serviceName)

	if len(instances) == 0 {
		b.WriteString("- no instances\n")
		return strings.TrimRight(b.String(), "\n")
	}

	for _, instance := range instances {
		fmt.Fprintf(&b, "- <%s|%s> (<%s/%s/services/%s/instances/%s|Dashboard>)\n",
			instance.InstanceURL, instance.InstanceName,
			dashboardBaseURL, org, serviceName, instance.InstanceName)
	}
	return strings.TrimRight(b.String(), "\n")
}

func orgName(execCtx *ExecutionContext) string {
	if execCtx.UserConfig != nil && execCtx.UserConfig.Org != nil {
		return *execCtx.UserConfig.Org
	}
	return "(unconfigured)"
}
