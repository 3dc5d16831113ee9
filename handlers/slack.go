package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"

	"github.com/rschick/cloud-slackbot/models"
	"github.com/rschick/cloud-slackbot/services"
)

// SlackWebhooksHandler is the command intake endpoint. Its only job is to
// durably record the invocation and acknowledge within Slack's response
// deadline; interpretation and remote calls happen later, on the dispatch
// side.
type SlackWebhooksHandler struct {
	signingSecret string
	slashCommand  string
	queueService  services.CommandQueueService
}

func NewSlackWebhooksHandler(
	signingSecret, slashCommand string,
	queueService services.CommandQueueService,
) *SlackWebhooksHandler {
	return &SlackWebhooksHandler{
		signingSecret: signingSecret,
		slashCommand:  slashCommand,
		queueService:  queueService,
	}
}

func (h *SlackWebhooksHandler) SetupEndpoints(router *mux.Router) {
	router.HandleFunc("/slack/commands", h.HandleSlackCommand).Methods("POST")
}

func (h *SlackWebhooksHandler) HandleSlackCommand(w http.ResponseWriter, r *http.Request) {
	log.Printf("⚡ Slack command received from %s", r.RemoteAddr)
	var buf bytes.Buffer
	tee := io.TeeReader(r.Body, &buf)

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		log.Printf("❌ Invalid secret verifier: %v", err)
		http.Error(w, "invalid secret verifier", http.StatusUnauthorized)
		return
	}

	if _, err := io.Copy(&verifier, tee); err != nil {
		log.Printf("❌ Failed to read request body: %v", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		log.Printf("❌ Slack signature verification failed: %v", err)
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(&buf)

	command, err := slack.SlashCommandParse(r)
	if err != nil {
		log.Printf("❌ Failed to parse slash command: %v", err)
		http.Error(w, "failed to parse slash command", http.StatusInternalServerError)
		return
	}

	if command.Command != h.slashCommand {
		log.Printf("⚠️ Unknown slash command: %s", command.Command)
		w.WriteHeader(http.StatusOK)
		return
	}

	req := models.CommandRequest{
		Command:     command.Command,
		Text:        command.Text,
		UserID:      command.UserID,
		UserName:    command.UserName,
		ChannelID:   command.ChannelID,
		TeamID:      command.TeamID,
		ResponseURL: command.ResponseURL,
	}

	record, err := h.queueService.Enqueue(r.Context(), req)
	if err != nil {
		// Store-write failure propagates to the webhook caller; there is
		// no retry at this layer.
		log.Printf("❌ Failed to enqueue command: %v", err)
		http.Error(w, "failed to enqueue command", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Queued command record %s from user %s", record.Key, command.UserID)

	// Empty acknowledgement; the real reply arrives via the response URL
	w.WriteHeader(http.StatusOK)
}
