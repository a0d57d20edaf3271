package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"autolynx-portal/internal/campaigns"
	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/config"
	"autolynx-portal/internal/contacts"
	"autolynx-portal/internal/database"
	"autolynx-portal/internal/settings"
	"autolynx-portal/internal/webhook"
	"autolynx-portal/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWebhook struct {
	mu sync.Mutex

	result *webhook.Result
	err    error

	url          string
	sessionID    string
	submitted    []contacts.Contact
	uploadedName string
	uploadedBody string
	chatInputs   []string
}

func (f *fakeWebhook) respond() (*webhook.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &webhook.Result{StatusCode: 200, Message: webhook.FallbackMessage}, nil
}

func (f *fakeWebhook) SubmitContacts(_ context.Context, url, sessionID string, list []contacts.Contact) (*webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url, f.sessionID, f.submitted = url, sessionID, list
	return f.respond()
}

func (f *fakeWebhook) UploadCSV(_ context.Context, url, filename string, r io.Reader) (*webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(r)
	f.url, f.uploadedName, f.uploadedBody = url, filename, string(data)
	return f.respond()
}

func (f *fakeWebhook) SendChat(_ context.Context, url, chatInput, sessionID string) (*webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url, f.sessionID = url, sessionID
	f.chatInputs = append(f.chatInputs, chatInput)
	return f.respond()
}

type fakeSource struct {
	stats    []campaigns.CampaignStats
	contacts []campaigns.CallContact
	err      error
}

func (s *fakeSource) CampaignStats(context.Context) ([]campaigns.CampaignStats, error) {
	return s.stats, s.err
}

func (s *fakeSource) Contacts(_ context.Context, campaignID string) ([]campaigns.CallContact, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []campaigns.CallContact
	for _, c := range s.contacts {
		if campaignID == "" || c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeSource) RecentContacts(context.Context) ([]campaigns.CallContact, error) {
	return s.contacts, s.err
}

func (s *fakeSource) Ping(context.Context) error {
	return s.err
}

type testEnv struct {
	router   *gin.Engine
	webhook  *fakeWebhook
	source   *fakeSource
	settings *settings.Service
	sessions *chat.Sessions
}

const (
	testChatURL   = "https://hooks.example.com/chat"
	testUploadURL = "https://hooks.example.com/csv"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zap.NewNop()
	hook := &fakeWebhook{}
	source := &fakeSource{}
	settingsSvc := settings.NewService(settings.NewGormStore(db), settings.WebhookConfig{
		ChatWebhookURL:      testChatURL,
		CSVUploadWebhookURL: testUploadURL,
	}, logger)
	sessions := chat.NewSessions(db)
	chatSvc := chat.NewService(sessions, hook, settingsSvc, logger)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	brand := config.Branding{
		AppName:        "AutoLynx AI Caller Portal",
		CompanyName:    "AutoLynx",
		AppDescription: "Professional AI-Powered Cold Calling Campaign Management",
		SupportEmail:   "support@autolynx.ai",
	}

	campaignHandler := NewCampaignHandler(source, logger)
	campaignHandler.Now = func() time.Time { return time.Date(2024, 11, 29, 12, 0, 0, 0, time.UTC) }

	h := Handlers{
		Pages:     NewPageHandler(tmpl, brand, settingsSvc, source, config.SourceREST, logger),
		Contacts:  NewContactHandler(hook, settingsSvc, sessions, logger),
		Upload:    NewUploadHandler(hook, settingsSvc, logger),
		Chat:      NewChatHandler(chatSvc, logger),
		Campaigns: campaignHandler,
		Settings:  NewSettingsHandler(settingsSvc, logger),
		Health:    NewHealthHandler(db, source, nil),
		Live:      func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
	}

	return &testEnv{
		router:   NewRouter(h, tmpl, web.Static(), false),
		webhook:  hook,
		source:   source,
		settings: settingsSvc,
		sessions: sessions,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
