package api

import (
	"errors"
	"net/http"

	"autolynx-portal/internal/settings"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	Settings *settings.Service
	Logger   *zap.Logger
}

func NewSettingsHandler(svc *settings.Service, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{Settings: svc, Logger: logger}
}

func (h *SettingsHandler) GetWebhooks(c *gin.Context) {
	c.JSON(http.StatusOK, h.Settings.WebhookConfig(c.Request.Context()))
}

func (h *SettingsHandler) UpdateWebhooks(c *gin.Context) {
	var req settings.WebhookConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.Settings.SaveWebhookConfig(c.Request.Context(), req)
	if errors.Is(err, settings.ErrInvalidURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.Logger.Error("failed to save webhook settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ResetWebhooks drops the saved URLs so the configured defaults apply again.
func (h *SettingsHandler) ResetWebhooks(c *gin.Context) {
	cfg, err := h.Settings.ResetWebhookConfig(c.Request.Context())
	if err != nil {
		h.Logger.Error("failed to reset webhook settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset settings"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *SettingsHandler) GetChatMode(c *gin.Context) {
	c.JSON(http.StatusOK, models.ChatModeBody{Mode: h.Settings.ChatMode(c.Request.Context())})
}

func (h *SettingsHandler) UpdateChatMode(c *gin.Context) {
	var req models.ChatModeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Settings.SaveChatMode(c.Request.Context(), req.Mode)
	if errors.Is(err, settings.ErrInvalidChatMode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.Logger.Error("failed to save chat mode", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *SettingsHandler) ResetChatMode(c *gin.Context) {
	if err := h.Settings.ResetChatMode(c.Request.Context()); err != nil {
		h.Logger.Error("failed to reset chat mode", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset settings"})
		return
	}
	c.JSON(http.StatusOK, models.ChatModeBody{Mode: h.Settings.ChatMode(c.Request.Context())})
}
