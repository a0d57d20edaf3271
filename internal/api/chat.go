package api

import (
	"context"
	"errors"
	"net/http"

	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/identity"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatService interface {
	Send(ctx context.Context, clientID string, surface chat.Surface, text string) (chat.Reply, error)
	History(ctx context.Context, clientID string, surface chat.Surface) (string, []chat.Message, error)
	Reset(ctx context.Context, clientID string, surface chat.Surface) (string, error)
}

type ChatHandler struct {
	Chat   ChatService
	Logger *zap.Logger
}

func NewChatHandler(svc ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Chat: svc, Logger: logger}
}

func surfaceParam(c *gin.Context) (chat.Surface, bool) {
	surface := chat.Surface(c.Param("surface"))
	if !surface.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown chat surface"})
		return "", false
	}
	return surface, true
}

// Send relays one user message and returns the bot reply. Webhook failures
// come back as a normal reply carrying a user-facing message.
func (h *ChatHandler) Send(c *gin.Context) {
	surface, ok := surfaceParam(c)
	if !ok {
		return
	}

	var req models.ChatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := h.Chat.Send(c.Request.Context(), identity.ClientID(c), surface, req.Message)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, reply)
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
	case errors.Is(err, chat.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "Please wait for the previous message to finish."})
	default:
		h.Logger.Error("chat send failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": chat.ErrorMessage})
	}
}

func (h *ChatHandler) History(c *gin.Context) {
	surface, ok := surfaceParam(c)
	if !ok {
		return
	}

	sessionID, msgs, err := h.Chat.History(c.Request.Context(), identity.ClientID(c), surface)
	if err != nil {
		h.Logger.Error("failed to load chat history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat history"})
		return
	}
	c.JSON(http.StatusOK, models.ChatHistoryResponse{SessionID: sessionID, Messages: msgs})
}

// Reset starts a new conversation; the backend sees a new session id.
func (h *ChatHandler) Reset(c *gin.Context) {
	surface, ok := surfaceParam(c)
	if !ok {
		return
	}

	sessionID, err := h.Chat.Reset(c.Request.Context(), identity.ClientID(c), surface)
	if err != nil {
		h.Logger.Error("failed to reset chat session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset chat"})
		return
	}
	c.JSON(http.StatusOK, models.ChatResetResponse{SessionID: sessionID})
}
