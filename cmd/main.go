package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rschick/cloud-slackbot/clients"
	cloudclient "github.com/rschick/cloud-slackbot/clients/cloud"
	slackclient "github.com/rschick/cloud-slackbot/clients/slack"
	"github.com/rschick/cloud-slackbot/config"
	"github.com/rschick/cloud-slackbot/db"
	"github.com/rschick/cloud-slackbot/handlers"
	"github.com/rschick/cloud-slackbot/middleware"
	"github.com/rschick/cloud-slackbot/services/broadcast"
	"github.com/rschick/cloud-slackbot/services/commandqueue"
	"github.com/rschick/cloud-slackbot/services/userconfigs"
	"github.com/rschick/cloud-slackbot/usecases/commands"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "cloud-slackbot",
	})

	// Initialize database connection and the durable keyed store
	dbConn, err := db.NewConnection(cfg.DatabaseURL, cfg.DatabaseSchema)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	storeRepo := db.NewPostgresStoreRepository(dbConn, cfg.DatabaseSchema)

	queueService := commandqueue.NewQueueService(storeRepo, cfg.QueuePollInterval)
	userConfigsService := userconfigs.NewUserConfigsService(storeRepo)

	slackClient := slackclient.NewSlackClient(cfg.SlackConfig.BotToken)

	// The factory owns the fallback to process-level defaults for users who
	// have not configured their own org and access key
	newCloudClient := func(orgName, accessKey string) clients.CloudClient {
		if orgName == "" {
			orgName = cfg.CloudConfig.OrgName
		}
		if accessKey == "" {
			accessKey = cfg.CloudConfig.AccessKey
		}
		return cloudclient.NewCloudClient(cfg.CloudConfig.Stage, orgName, accessKey)
	}

	commandsUseCase := commands.NewCommandsUseCase(
		userConfigsService,
		queueService,
		slackClient,
		newCloudClient,
	)

	// Start dequeuing intake records into the dispatcher
	queueService.Start(alertMiddleware.WrapCommandHandler(commandsUseCase.ProcessCommandRecord))
	defer queueService.Stop()

	// Start the hourly broadcast to registered users
	broadcastService := broadcast.NewBroadcastService(
		userConfigsService,
		slackClient,
		cfg.BroadcastSchedule,
	)
	broadcastRun := alertMiddleware.WrapBackgroundTask("Broadcast", func() error {
		return broadcastService.RunOnce(context.Background())
	})
	if err := broadcastService.Start(broadcastRun); err != nil {
		return err
	}
	defer broadcastService.Stop()

	// Create a new router
	router := mux.NewRouter()

	slackHandler := handlers.NewSlackWebhooksHandler(
		cfg.SlackConfig.SigningSecret,
		cfg.SlackConfig.SlashCommand,
		queueService,
	)
	slackHandler.SetupEndpoints(router)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	handler := cors.Default().Handler(alertMiddleware.HTTPMiddleware(router))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Printf("✅ Listening on http://localhost:%s/slack/commands", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("📋 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Failed to shut down HTTP server cleanly: %v", err)
	}

	return nil
}
