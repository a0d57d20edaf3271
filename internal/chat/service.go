// Package chat runs the conversational surfaces of the portal: the floating
// widget and the inline panel on the Upload page.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"autolynx-portal/internal/settings"
	"autolynx-portal/internal/webhook"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	GreetingMessage      = "Hi! I'm here to help you with your calling campaigns. You can paste contact lists, ask questions, or get help formatting your data. Try typing 'help' for more information!"
	ErrorMessage         = "Sorry, I encountered an error. Please try again."
	TimeoutMessage       = "This is taking longer than expected, but your request is most likely still being processed. Check the Dashboard in a few minutes for progress."
	NotConfiguredMessage = "The chat webhook is not configured yet. Add its URL on the Settings page."
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a message is already being sent for this session")
)

// Sender posts a chat turn to the automation backend.
type Sender interface {
	SendChat(ctx context.Context, url, chatInput, sessionID string) (*webhook.Result, error)
}

// ConfigSource supplies the current webhook URLs.
type ConfigSource interface {
	WebhookConfig(ctx context.Context) settings.WebhookConfig
}

// Reply is the bot side of one exchange.
type Reply struct {
	SessionID      string  `json:"session_id"`
	Message        Message `json:"message"`
	CampaignQueued bool    `json:"campaign_queued"`
	Pending        bool    `json:"pending"`
	Failed         bool    `json:"failed"`
}

type Service struct {
	sessions *Sessions
	sender   Sender
	config   ConfigSource
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(sessions *Sessions, sender Sender, config ConfigSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		sender:   sender,
		config:   config,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Send forwards text to the chat webhook and returns the bot reply. Delivery
// problems are reported inside the reply, not as errors; only bad input and
// concurrent sends on the same session are returned as errors.
func (s *Service) Send(ctx context.Context, clientID string, surface Surface, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	sessionID, persistent := s.sessionFor(ctx, clientID, surface)
	if !s.acquire(sessionID) {
		return Reply{}, ErrBusy
	}
	defer s.release(sessionID)

	s.record(ctx, persistent, sessionID, RoleUser, text)

	reply := Reply{SessionID: sessionID}
	var botText string

	cfg := s.config.WebhookConfig(ctx)
	res, err := s.sender.SendChat(ctx, cfg.ChatWebhookURL, text, sessionID)
	switch {
	case err == nil:
		botText = res.Message
		lower := strings.ToLower(botText)
		reply.CampaignQueued = strings.Contains(lower, "campaign") || strings.Contains(lower, "queued")
	case webhook.IsTimeout(err):
		s.logger.Info("chat webhook timed out, assuming background processing", zap.String("session_id", sessionID))
		botText = TimeoutMessage
		reply.Pending = true
	case errors.Is(err, webhook.ErrNotConfigured):
		botText = NotConfiguredMessage
		reply.Failed = true
	default:
		s.logger.Error("chat webhook failed", zap.String("session_id", sessionID), zap.Error(err))
		botText = ErrorMessage
		reply.Failed = true
	}

	reply.Message = s.record(ctx, persistent, sessionID, RoleBot, botText)
	return reply, nil
}

// History returns the transcript for clientID on surface. A fresh widget
// session starts with the greeting.
func (s *Service) History(ctx context.Context, clientID string, surface Surface) (string, []Message, error) {
	sessionID, err := s.sessions.Current(ctx, clientID, surface)
	if err != nil {
		return "", nil, err
	}
	msgs, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	if len(msgs) == 0 && surface == SurfaceWidget {
		msgs = []Message{{Role: RoleBot, Text: GreetingMessage, CreatedAt: time.Now()}}
	}
	return sessionID, msgs, nil
}

// Reset starts a new conversation for clientID on surface.
func (s *Service) Reset(ctx context.Context, clientID string, surface Surface) (string, error) {
	return s.sessions.Reset(ctx, clientID, surface)
}

// sessionFor resolves the persisted session id. If storage is unavailable the
// exchange still goes through on a throwaway id.
func (s *Service) sessionFor(ctx context.Context, clientID string, surface Surface) (string, bool) {
	sessionID, err := s.sessions.Current(ctx, clientID, surface)
	if err != nil {
		s.logger.Error("chat session storage unavailable, continuing without history", zap.Error(err))
		return uuid.NewString(), false
	}
	return sessionID, true
}

func (s *Service) record(ctx context.Context, persistent bool, sessionID, role, text string) Message {
	msg := Message{Role: role, Text: text, CreatedAt: time.Now()}
	if !persistent {
		return msg
	}
	stored, err := s.sessions.Append(ctx, sessionID, role, text)
	if errors.Is(err, ErrSessionClosed) {
		s.logger.Info("session was reset during the exchange, not storing message", zap.String("session_id", sessionID))
		return msg
	}
	if err != nil {
		s.logger.Error("failed to store chat message", zap.String("session_id", sessionID), zap.Error(err))
		return msg
	}
	return stored
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}
