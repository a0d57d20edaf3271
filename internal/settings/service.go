// Package settings holds the user-editable portal configuration (webhook URLs
// and chat mode) and notifies subscribers when it changes.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	KeyWebhookConfig = "webhookConfig"
	KeyChatMode      = "chatMode"
)

var (
	ErrInvalidURL      = errors.New("webhook URL must be an absolute http or https URL")
	ErrInvalidChatMode = errors.New("chat mode must be inline or widget")
)

// WebhookConfig points the portal at the automation workflows.
type WebhookConfig struct {
	ChatWebhookURL      string `json:"chatWebhookUrl"`
	CSVUploadWebhookURL string `json:"csvUploadWebhookUrl"`
}

type ChatMode string

const (
	ChatModeInline ChatMode = "inline"
	ChatModeWidget ChatMode = "widget"
)

func (m ChatMode) Valid() bool {
	return m == ChatModeInline || m == ChatModeWidget
}

// Change is published to subscribers after every successful save or reset.
type Change struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type Service struct {
	store    Store
	defaults WebhookConfig
	logger   *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// NewService returns a Service. defaults apply whenever no webhook
// configuration has been saved.
func NewService(store Store, defaults WebhookConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		defaults: defaults,
		logger:   logger,
		subs:     make(map[int]chan Change),
	}
}

// WebhookConfig returns the saved configuration, falling back to the defaults
// when nothing is stored or the stored value cannot be read.
func (s *Service) WebhookConfig(ctx context.Context) WebhookConfig {
	var cfg WebhookConfig
	if !s.load(ctx, KeyWebhookConfig, &cfg) {
		return s.defaults
	}
	return cfg
}

func (s *Service) SaveWebhookConfig(ctx context.Context, cfg WebhookConfig) (WebhookConfig, error) {
	cfg.ChatWebhookURL = strings.TrimSpace(cfg.ChatWebhookURL)
	cfg.CSVUploadWebhookURL = strings.TrimSpace(cfg.CSVUploadWebhookURL)
	for _, raw := range []string{cfg.ChatWebhookURL, cfg.CSVUploadWebhookURL} {
		if err := validateURL(raw); err != nil {
			return WebhookConfig{}, err
		}
	}

	if err := s.save(ctx, KeyWebhookConfig, cfg); err != nil {
		return WebhookConfig{}, err
	}
	s.publish(Change{Key: KeyWebhookConfig, Value: cfg})
	return cfg, nil
}

func (s *Service) ResetWebhookConfig(ctx context.Context) (WebhookConfig, error) {
	if err := s.store.Delete(ctx, KeyWebhookConfig); err != nil {
		return WebhookConfig{}, err
	}
	s.publish(Change{Key: KeyWebhookConfig, Value: s.defaults})
	return s.defaults, nil
}

func (s *Service) ChatMode(ctx context.Context) ChatMode {
	var mode ChatMode
	if !s.load(ctx, KeyChatMode, &mode) || !mode.Valid() {
		return ChatModeInline
	}
	return mode
}

func (s *Service) SaveChatMode(ctx context.Context, mode ChatMode) error {
	if !mode.Valid() {
		return ErrInvalidChatMode
	}
	if err := s.save(ctx, KeyChatMode, mode); err != nil {
		return err
	}
	s.publish(Change{Key: KeyChatMode, Value: mode})
	return nil
}

func (s *Service) ResetChatMode(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyChatMode); err != nil {
		return err
	}
	s.publish(Change{Key: KeyChatMode, Value: ChatModeInline})
	return nil
}

// Subscribe registers for change notifications. The returned func
// unsubscribes and closes the channel.
func (s *Service) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Change, 8)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Service) publish(change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- change:
		default:
			s.logger.Warn("settings subscriber is full, dropping change", zap.Int("subscriber", id), zap.String("key", change.Key))
		}
	}
}

// load reads key into dst. Missing or unreadable values report false.
func (s *Service) load(ctx context.Context, key string, dst any) bool {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Error("failed to load setting", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Error("stored setting is not valid JSON", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return s.store.Put(ctx, key, string(data))
}

func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}
