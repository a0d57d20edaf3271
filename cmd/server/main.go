package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"autolynx-portal/internal/api"
	"autolynx-portal/internal/campaigns"
	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/config"
	"autolynx-portal/internal/database"
	"autolynx-portal/internal/logging"
	"autolynx-portal/internal/realtime"
	"autolynx-portal/internal/settings"
	"autolynx-portal/internal/webhook"
	"autolynx-portal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenLocal(cfg)
	if err != nil {
		logger.Fatal("Failed to open portal database", zap.Error(err))
	}

	source, feed, err := campaignSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up campaign data source", zap.Error(err))
	}

	settingsService := settings.NewService(settings.NewGormStore(db), settings.WebhookConfig{
		ChatWebhookURL:      cfg.ChatWebhookURL,
		CSVUploadWebhookURL: cfg.CSVUploadWebhookURL,
	}, logger)
	webhookClient := webhook.NewClient(webhook.Options{
		ChatTimeout:   cfg.ChatTimeout,
		UploadTimeout: cfg.UploadTimeout,
		Logger:        logger.Named("webhook"),
	})
	sessions := chat.NewSessions(db)
	chatService := chat.NewService(sessions, webhookClient, settingsService, logger.Named("chat"))

	hub := realtime.NewHub(logger.Named("live"))
	go hub.Run(ctx)

	if feed != nil {
		go func() {
			if err := feed.Run(ctx, hub.NotifyRefresh); err != nil {
				logger.Error("Change feed stopped", zap.Error(err))
			}
		}()
	}
	go relaySettings(ctx, settingsService, hub, logger)

	tmpl, err := web.Templates()
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	handlers := api.Handlers{
		Pages:     api.NewPageHandler(tmpl, cfg.Branding, settingsService, source, cfg.CampaignSource, logger),
		Contacts:  api.NewContactHandler(webhookClient, settingsService, sessions, logger),
		Upload:    api.NewUploadHandler(webhookClient, settingsService, logger),
		Chat:      api.NewChatHandler(chatService, logger),
		Campaigns: api.NewCampaignHandler(source, logger),
		Settings:  api.NewSettingsHandler(settingsService, logger),
		Health:    api.NewHealthHandler(db, source, hub),
		Live:      hub.ServeWs,
	}
	r := api.NewRouter(handlers, tmpl, web.Static(), cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("campaign_source", cfg.CampaignSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// campaignSource picks where campaign data and change events come from.
func campaignSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (campaigns.Source, realtime.Feed, error) {
	switch cfg.CampaignSource {
	case config.SourcePostgres:
		cdb, err := database.OpenPostgres(cfg.CampaignDatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.InstallTriggers {
			if err := realtime.InstallTriggers(ctx, cdb); err != nil {
				return nil, nil, err
			}
			logger.Info("Change triggers installed")
		}
		return campaigns.NewPostgresSource(cdb), realtime.NewPGListener(cfg.CampaignDatabaseURL, logger.Named("feed")), nil
	case config.SourceREST:
		return campaigns.NewRESTSource(cfg.SupabaseURL, cfg.SupabaseKey, nil), realtime.NewPoller(cfg.PollInterval), nil
	default:
		logger.Warn("No campaign data source configured; campaign pages will show an error")
		return campaigns.Unavailable{}, nil, nil
	}
}

// relaySettings tells open pages when settings change so they can reload.
func relaySettings(ctx context.Context, svc *settings.Service, hub *realtime.Hub, logger *zap.Logger) {
	changes, cancel := svc.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			logger.Info("Settings changed", zap.String("key", change.Key))
			hub.BroadcastEvent("settings", change)
		}
	}
}
