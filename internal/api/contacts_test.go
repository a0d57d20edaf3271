package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/identity"
	"autolynx-portal/internal/webhook"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContacts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/contacts/parse", models.ParseRequest{
		Text: "John Doe, +1234567890, Acme Corp\nA, +1234567890\n+1555123456 Bob Johnson",
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ParseResponse](t, w)
	require.Len(t, resp.Contacts, 2)
	assert.Equal(t, "Acme Corp", resp.Contacts[0].BusinessName)
	assert.Equal(t, "Bob Johnson", resp.Contacts[1].Name)
	assert.Equal(t, 3, resp.Report.Lines)
	assert.Equal(t, 1, resp.Report.Rejected)
}

func TestSubmitContacts_NoValidContacts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/contacts/submit", models.ParseRequest{Text: "nothing useful here"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, noValidContactsMessage, decode[gin.H](t, w)["error"])
	assert.Nil(t, env.webhook.submitted)
}

func TestSubmitContacts_UsesInlineSession(t *testing.T) {
	env := newTestEnv(t)
	env.webhook.result = &webhook.Result{StatusCode: 200, Message: "Campaign queued with 1 contact"}

	clientID := "0123456789abcdef0123456789abcdef"
	cookie := &http.Cookie{Name: identity.CookieName, Value: clientID}

	w := env.do(t, http.MethodPost, "/api/contacts/submit", models.ParseRequest{Text: "Jane Roe, +15551234567"}, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.SubmitResponse](t, w)
	assert.Equal(t, "Campaign queued with 1 contact", resp.Message)
	require.Len(t, resp.Contacts, 1)

	sessionID, err := env.sessions.Current(context.Background(), clientID, chat.SurfaceInline)
	require.NoError(t, err)
	assert.Equal(t, sessionID, env.webhook.sessionID)
	assert.Equal(t, testChatURL, env.webhook.url)
}

func TestSubmitContacts_TimeoutIsAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.webhook.err = fmt.Errorf("%w after 1m0s", webhook.ErrTimeout)

	w := env.do(t, http.MethodPost, "/api/contacts/submit", models.ParseRequest{Text: "Jane Roe, +15551234567"})

	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decode[models.SubmitResponse](t, w)
	assert.True(t, resp.Pending)
	assert.Equal(t, chat.TimeoutMessage, resp.Message)
}

func TestSubmitContacts_WebhookFailure(t *testing.T) {
	env := newTestEnv(t)
	env.webhook.err = &webhook.StatusError{Code: 500}

	w := env.do(t, http.MethodPost, "/api/contacts/submit", models.ParseRequest{Text: "Jane Roe, +15551234567"})

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, chat.ErrorMessage, decode[gin.H](t, w)["error"])
}
