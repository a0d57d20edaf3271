package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"autolynx-portal/internal/campaigns"
	"autolynx-portal/internal/config"
	"autolynx-portal/internal/contacts"
	"autolynx-portal/internal/settings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PartialHeader asks a live page for its refreshable region only.
const PartialHeader = "X-Partial"

type PageSettings interface {
	WebhookSettings
	ChatMode(ctx context.Context) settings.ChatMode
}

// PageData is what every page template receives.
type PageData struct {
	Title    string
	Active   string
	Brand    config.Branding
	ChatMode settings.ChatMode
	Data     any
	Error    string
}

type limits struct {
	MaxContacts int
	MinNameLen  int
	MaxNameLen  int
}

var contactLimits = limits{
	MaxContacts: contacts.MaxContacts,
	MinNameLen:  contacts.MinNameLen,
	MaxNameLen:  contacts.MaxNameLen,
}

type campaignPage struct {
	CampaignID string
	Stats      campaigns.DetailStats
	Contacts   []campaigns.CallContact
}

type settingsPage struct {
	limits
	Webhooks       settings.WebhookConfig
	CampaignSource string
}

type PageHandler struct {
	Templates  *template.Template
	Brand      config.Branding
	Settings   PageSettings
	Source     campaigns.Source
	SourceName string
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewPageHandler(tmpl *template.Template, brand config.Branding, svc PageSettings, source campaigns.Source, sourceName string, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		Templates:  tmpl,
		Brand:      brand,
		Settings:   svc,
		Source:     source,
		SourceName: sourceName,
		Logger:     logger,
		Now:        time.Now,
	}
}

func (h *PageHandler) render(c *gin.Context, status int, name, title, active string, data any, loadErr error) {
	page := PageData{
		Title:    title,
		Active:   active,
		Brand:    h.Brand,
		ChatMode: h.Settings.ChatMode(c.Request.Context()),
		Data:     data,
	}
	if loadErr != nil {
		page.Error = h.userError(loadErr)
	}

	if c.GetHeader(PartialHeader) == "1" && h.Templates.Lookup(name+"_content") != nil {
		c.HTML(status, name+"_content", page)
		return
	}
	c.HTML(status, name, page)
}

func (h *PageHandler) userError(err error) string {
	if errors.Is(err, campaigns.ErrUnavailable) {
		return "Campaign data is not configured for this portal."
	}
	h.Logger.Error("failed to load page data", zap.Error(err))
	return "Could not load campaign data. Please try again in a moment."
}

func (h *PageHandler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "index", "Home", "home", contactLimits, nil)
}

func (h *PageHandler) Upload(c *gin.Context) {
	h.render(c, http.StatusOK, "upload", "Upload Contacts", "upload", contactLimits, nil)
}

func (h *PageHandler) Campaigns(c *gin.Context) {
	stats, err := h.Source.CampaignStats(c.Request.Context())
	h.render(c, http.StatusOK, "campaigns", "Campaigns", "campaigns", campaigns.Summaries(stats), err)
}

func (h *PageHandler) Campaign(c *gin.Context) {
	id := c.Param("id")
	list, err := h.Source.Contacts(c.Request.Context(), id)
	data := campaignPage{CampaignID: id, Stats: campaigns.Detail(list), Contacts: list}
	h.render(c, http.StatusOK, "campaign", id, "campaigns", data, err)
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.Source.CampaignStats(ctx)
	var recent []campaigns.CallContact
	if err == nil {
		recent, err = h.Source.RecentContacts(ctx)
	}
	h.render(c, http.StatusOK, "dashboard", "Dashboard", "dashboard", campaigns.Dashboard(stats, recent, h.Now()), err)
}

func (h *PageHandler) SettingsPage(c *gin.Context) {
	data := settingsPage{
		limits:         contactLimits,
		Webhooks:       h.Settings.WebhookConfig(c.Request.Context()),
		CampaignSource: h.SourceName,
	}
	h.render(c, http.StatusOK, "settings", "Settings", "settings", data, nil)
}

// NotFound serves the 404 page for unknown page routes and JSON for /api.
func (h *PageHandler) NotFound(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	h.Logger.Debug("page not found", zap.String("path", c.Request.URL.Path))
	h.render(c, http.StatusNotFound, "notfound", "Page Not Found", "", nil, nil)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
