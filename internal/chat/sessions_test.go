package chat

import (
	"context"
	"fmt"
	"testing"

	"autolynx-portal/internal/database"
	"autolynx-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSessions_CurrentIsStable(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(newTestDB(t))

	first, err := s.Current(ctx, "client-a", SurfaceWidget)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	again, err := s.Current(ctx, "client-a", SurfaceWidget)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	inline, err := s.Current(ctx, "client-a", SurfaceInline)
	require.NoError(t, err)
	assert.NotEqual(t, first, inline, "each surface has its own session")

	other, err := s.Current(ctx, "client-b", SurfaceWidget)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSessions_ResetDropsHistory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := NewSessions(db)

	old, err := s.Current(ctx, "client-a", SurfaceInline)
	require.NoError(t, err)
	_, err = s.Append(ctx, old, RoleUser, "hello")
	require.NoError(t, err)

	fresh, err := s.Reset(ctx, "client-a", SurfaceInline)
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)

	current, err := s.Current(ctx, "client-a", SurfaceInline)
	require.NoError(t, err)
	assert.Equal(t, fresh, current)

	var count int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Where("session_id = ?", old).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSessions_ResetWithoutSession(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(newTestDB(t))

	id, err := s.Reset(ctx, "new-client", SurfaceWidget)
	require.NoError(t, err)

	current, err := s.Current(ctx, "new-client", SurfaceWidget)
	require.NoError(t, err)
	assert.Equal(t, id, current)
}

func TestSessions_HistoryKeepsLastMessages(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(newTestDB(t))

	first, err := s.Current(ctx, "client-a", SurfaceInline)
	require.NoError(t, err)
	second, err := s.Current(ctx, "client-b", SurfaceInline)
	require.NoError(t, err)

	for i := 0; i < MaxHistory+5; i++ {
		_, err := s.Append(ctx, first, RoleUser, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}
	_, err = s.Append(ctx, second, RoleUser, "elsewhere")
	require.NoError(t, err)

	msgs, err := s.History(ctx, first)
	require.NoError(t, err)
	require.Len(t, msgs, MaxHistory)
	assert.Equal(t, "msg 5", msgs[0].Text)
	assert.Equal(t, fmt.Sprintf("msg %d", MaxHistory+4), msgs[len(msgs)-1].Text)

	other, err := s.History(ctx, second)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSessions_AppendAfterResetIsRefused(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := NewSessions(db)

	old, err := s.Current(ctx, "client-a", SurfaceWidget)
	require.NoError(t, err)
	_, err = s.Reset(ctx, "client-a", SurfaceWidget)
	require.NoError(t, err)

	_, err = s.Append(ctx, old, RoleBot, "late reply")
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = s.Append(ctx, "never-issued", RoleUser, "hello")
	assert.ErrorIs(t, err, ErrSessionClosed)

	var count int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}
