package api

import (
	"errors"
	"net/http"
	"testing"

	"autolynx-portal/internal/campaigns"
	"autolynx-portal/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCampaigns(env *testEnv) {
	last, _ := campaigns.ParseTimestamp("2024-11-29T09:30:00Z")
	env.source.stats = []campaigns.CampaignStats{
		{CampaignID: "ALX-1", Total: 3, Completed: 1, Failed: 1, LastActivity: &last},
		{CampaignID: "ALX-2", Total: 2, Completed: 2},
	}
	env.source.contacts = []campaigns.CallContact{
		{RowID: "1", CampaignID: "ALX-1", Name: "Ann", Phone: "+15550000001", Status: campaigns.StatusDone, LastCalledAt: &last},
		{RowID: "2", CampaignID: "ALX-1", Name: "Ben", Phone: "+15550000002", Status: campaigns.StatusFailed},
		{RowID: "3", CampaignID: "ALX-1", Name: "Cy", Phone: "+15550000003", Status: campaigns.StatusCalling},
		{RowID: "4", CampaignID: "ALX-2", Name: "Di", Phone: "+15550000004", Status: campaigns.StatusDone},
		{RowID: "5", CampaignID: "ALX-2", Name: "Ed", Phone: "+15550000005", Status: campaigns.StatusDone},
	}
}

func TestListCampaigns(t *testing.T) {
	env := newTestEnv(t)
	seedCampaigns(env)

	w := env.do(t, http.MethodGet, "/api/campaigns", nil)

	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]campaigns.CampaignSummary](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, campaigns.BadgeInProgress, list[0].Badge)
	assert.Equal(t, campaigns.BadgeCompleted, list[1].Badge)
}

func TestGetCampaignContacts(t *testing.T) {
	env := newTestEnv(t)
	seedCampaigns(env)

	w := env.do(t, http.MethodGet, "/api/campaigns/ALX-1/contacts", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.CampaignContactsResponse](t, w)
	assert.Equal(t, "ALX-1", resp.CampaignID)
	assert.Len(t, resp.Contacts, 3)
	assert.Equal(t, 50, resp.Stats.SuccessRate)
	assert.Equal(t, 67, resp.Stats.Progress)
}

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t)
	seedCampaigns(env)

	w := env.do(t, http.MethodGet, "/api/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[campaigns.DashboardStats](t, w)
	assert.Equal(t, 2, stats.TotalCampaigns)
	assert.Equal(t, 5, stats.TotalCalls)
	assert.Equal(t, 60, stats.SuccessRate)
	assert.Equal(t, 1, stats.TodaysCalls)
	assert.Equal(t, 1, stats.ActiveCampaigns)
	assert.Equal(t, "11/29", stats.Trend[6].Date)
}

func TestCampaignSourceErrors(t *testing.T) {
	env := newTestEnv(t)

	env.source.err = campaigns.ErrUnavailable
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/campaigns", nil).Code)

	env.source.err = errors.New("connection reset")
	w := env.do(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
