package api

import (
	"context"
	"errors"
	"net/http"

	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/contacts"
	"autolynx-portal/internal/identity"
	"autolynx-portal/internal/settings"
	"autolynx-portal/internal/webhook"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const noValidContactsMessage = "No valid contacts found. Please check the format."

// WebhookSettings supplies the current webhook URLs.
type WebhookSettings interface {
	WebhookConfig(ctx context.Context) settings.WebhookConfig
}

// SessionResolver maps a client to its chat session id.
type SessionResolver interface {
	Current(ctx context.Context, clientID string, surface chat.Surface) (string, error)
}

type ContactSubmitter interface {
	SubmitContacts(ctx context.Context, url, sessionID string, list []contacts.Contact) (*webhook.Result, error)
}

type ContactHandler struct {
	Webhook  ContactSubmitter
	Settings WebhookSettings
	Sessions SessionResolver
	Logger   *zap.Logger
}

func NewContactHandler(client ContactSubmitter, cfg WebhookSettings, sessions SessionResolver, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{Webhook: client, Settings: cfg, Sessions: sessions, Logger: logger}
}

// Parse previews how pasted text will be read without sending anything.
func (h *ContactHandler) Parse(c *gin.Context) {
	var req models.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, report := contacts.ParseWithReport(req.Text)
	c.JSON(http.StatusOK, models.ParseResponse{Contacts: list, Report: report})
}

// Submit parses pasted text and forwards the contact list to the chat
// webhook, which starts the campaign.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list := contacts.Parse(req.Text)
	if len(list) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": noValidContactsMessage})
		return
	}

	ctx := c.Request.Context()
	sessionID, err := h.Sessions.Current(ctx, identity.ClientID(c), chat.SurfaceInline)
	if err != nil {
		h.Logger.Error("failed to resolve chat session for submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve chat session"})
		return
	}

	url := h.Settings.WebhookConfig(ctx).ChatWebhookURL
	res, err := h.Webhook.SubmitContacts(ctx, url, sessionID, list)
	switch {
	case err == nil:
		h.Logger.Info("contacts submitted", zap.Int("contacts", len(list)), zap.String("session_id", sessionID))
		c.JSON(http.StatusOK, models.SubmitResponse{Message: res.Message, Contacts: list})
	case webhook.IsTimeout(err):
		h.Logger.Info("contact submission timed out, assuming background processing", zap.Int("contacts", len(list)))
		c.JSON(http.StatusAccepted, models.SubmitResponse{Message: chat.TimeoutMessage, Contacts: list, Pending: true})
	case errors.Is(err, webhook.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": chat.NotConfiguredMessage})
	default:
		h.Logger.Error("contact submission failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": chat.ErrorMessage})
	}
}
