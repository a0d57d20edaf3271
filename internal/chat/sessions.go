package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autolynx-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxHistory is how many messages are kept per session.
const MaxHistory = 50

// ErrSessionClosed is returned by Append for a session id that has been reset
// away or never existed.
var ErrSessionClosed = errors.New("chat session is no longer active")

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Surface is a place in the UI that holds its own conversation.
type Surface string

const (
	SurfaceWidget Surface = "widget"
	SurfaceInline Surface = "inline"
)

func (s Surface) Valid() bool {
	return s == SurfaceWidget || s == SurfaceInline
}

// Message is one entry of a chat transcript.
type Message struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions maps (client, surface) pairs to the session id sent to the
// automation backend and keeps each session's recent transcript.
type Sessions struct {
	db    *gorm.DB
	newID func() string
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db, newID: uuid.NewString}
}

// Current returns the session id for clientID on surface, creating one on
// first use.
func (s *Sessions) Current(ctx context.Context, clientID string, surface Surface) (string, error) {
	db := s.db.WithContext(ctx)

	var session models.ChatSession
	err := db.Where("client_id = ? AND surface = ?", clientID, string(surface)).First(&session).Error
	if err == nil {
		return session.SessionID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("load chat session: %w", err)
	}

	session = models.ChatSession{ClientID: clientID, Surface: string(surface), SessionID: s.newID()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create chat session: %w", err)
	}

	// a concurrent request may have won the insert
	if err := db.Where("client_id = ? AND surface = ?", clientID, string(surface)).First(&session).Error; err != nil {
		return "", fmt.Errorf("reload chat session: %w", err)
	}
	return session.SessionID, nil
}

// Reset starts a new session for clientID on surface and forgets the old
// transcript. It returns the new session id.
func (s *Sessions) Reset(ctx context.Context, clientID string, surface Surface) (string, error) {
	newID := s.newID()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.ChatSession
		err := tx.Where("client_id = ? AND surface = ?", clientID, string(surface)).First(&session).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.ChatSession{ClientID: clientID, Surface: string(surface), SessionID: newID}).Error
		case err != nil:
			return err
		}

		if err := tx.Where("session_id = ?", session.SessionID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Model(&session).Update("session_id", newID).Error
	})
	if err != nil {
		return "", fmt.Errorf("reset chat session: %w", err)
	}
	return newID, nil
}

// Append records a message and prunes the session down to MaxHistory entries.
// Messages for a session that is no longer current are refused with
// ErrSessionClosed.
func (s *Sessions) Append(ctx context.Context, sessionID, role, text string) (Message, error) {
	row := models.ChatMessage{SessionID: sessionID, Role: role, Text: text}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.ChatSession{}).Where("session_id = ?", sessionID).Count(&active).Error; err != nil {
			return err
		}
		if active == 0 {
			return ErrSessionClosed
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		keep := tx.Model(&models.ChatMessage{}).
			Select("id").
			Where("session_id = ?", sessionID).
			Order("id desc").
			Limit(MaxHistory)
		return tx.Where("session_id = ? AND id NOT IN (?)", sessionID, keep).Delete(&models.ChatMessage{}).Error
	})
	if errors.Is(err, ErrSessionClosed) {
		return Message{}, err
	}
	if err != nil {
		return Message{}, fmt.Errorf("append chat message: %w", err)
	}
	return toMessage(row), nil
}

// History returns the stored transcript, oldest first.
func (s *Sessions) History(ctx context.Context, sessionID string) ([]Message, error) {
	var rows []models.ChatMessage
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMessage(r))
	}
	return out, nil
}

func toMessage(r models.ChatMessage) Message {
	return Message{ID: r.ID, Role: r.Role, Text: r.Text, CreatedAt: r.CreatedAt}
}
