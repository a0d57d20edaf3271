package api

import (
	"net/http"
	"testing"

	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/identity"
	"autolynx-portal/internal/webhook"
	"autolynx-portal/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_SendAndHistory(t *testing.T) {
	env := newTestEnv(t)
	env.webhook.result = &webhook.Result{StatusCode: 200, Message: "Your campaign is queued."}
	cookie := &http.Cookie{Name: identity.CookieName, Value: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}

	w := env.do(t, http.MethodPost, "/api/chat/inline", models.ChatSendRequest{Message: "John, +15551234567"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	reply := decode[chat.Reply](t, w)
	assert.Equal(t, "Your campaign is queued.", reply.Message.Text)
	assert.True(t, reply.CampaignQueued)
	assert.Equal(t, []string{"John, +15551234567"}, env.webhook.chatInputs)

	w = env.do(t, http.MethodGet, "/api/chat/inline/history", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[models.ChatHistoryResponse](t, w)
	assert.Equal(t, reply.SessionID, history.SessionID)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, chat.RoleUser, history.Messages[0].Role)
}

func TestChat_ResetRotatesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := &http.Cookie{Name: identity.CookieName, Value: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}

	before := decode[models.ChatHistoryResponse](t, env.do(t, http.MethodGet, "/api/chat/widget/history", nil, cookie))
	require.Len(t, before.Messages, 1, "fresh widget shows the greeting")

	w := env.do(t, http.MethodPost, "/api/chat/widget/reset", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	after := decode[models.ChatResetResponse](t, w)
	assert.NotEqual(t, before.SessionID, after.SessionID)
}

func TestChat_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/chat/sidebar", models.ChatSendRequest{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/chat/inline", map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/chat/inline", models.ChatSendRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_WebhookErrorIsAReply(t *testing.T) {
	env := newTestEnv(t)
	env.webhook.err = &webhook.StatusError{Code: 503}

	w := env.do(t, http.MethodPost, "/api/chat/widget", models.ChatSendRequest{Message: "hello"})

	require.Equal(t, http.StatusOK, w.Code)
	reply := decode[chat.Reply](t, w)
	assert.True(t, reply.Failed)
	assert.Equal(t, chat.ErrorMessage, reply.Message.Text)
}
