package api

import (
	"html/template"
	"io/fs"
	"net/http"

	"autolynx-portal/internal/identity"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Pages     *PageHandler
	Contacts  *ContactHandler
	Upload    *UploadHandler
	Chat      *ChatHandler
	Campaigns *CampaignHandler
	Settings  *SettingsHandler
	Health    *HealthHandler
	Live      http.HandlerFunc
}

// NewRouter builds the portal's gin engine: pages, JSON API, static assets
// and the live update socket.
func NewRouter(h Handlers, tmpl *template.Template, static fs.FS, cookieSecure bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.StaticFS("/static", http.FS(static))
	r.GET("/health", h.Health.Health)

	site := r.Group("/", identity.Middleware(cookieSecure))
	{
		// Pages
		site.GET("/", h.Pages.Home)
		site.GET("/upload", h.Pages.Upload)
		site.GET("/campaigns", h.Pages.Campaigns)
		site.GET("/campaigns/:id", h.Pages.Campaign)
		site.GET("/dashboard", h.Pages.Dashboard)
		site.GET("/settings", h.Pages.SettingsPage)

		site.GET("/ws", gin.WrapF(h.Live))
	}

	apiGroup := r.Group("/api", identity.Middleware(cookieSecure))
	{
		// Contacts
		apiGroup.POST("/contacts/parse", h.Contacts.Parse)
		apiGroup.POST("/contacts/submit", h.Contacts.Submit)
		apiGroup.POST("/upload/csv", h.Upload.UploadCSV)

		// Chat
		apiGroup.POST("/chat/:surface", h.Chat.Send)
		apiGroup.GET("/chat/:surface/history", h.Chat.History)
		apiGroup.POST("/chat/:surface/reset", h.Chat.Reset)

		// Campaign data
		apiGroup.GET("/campaigns", h.Campaigns.ListCampaigns)
		apiGroup.GET("/campaigns/:id/contacts", h.Campaigns.GetContacts)
		apiGroup.GET("/dashboard", h.Campaigns.GetDashboard)

		// Settings
		settingsGroup := apiGroup.Group("/settings")
		{
			settingsGroup.GET("/webhooks", h.Settings.GetWebhooks)
			settingsGroup.PUT("/webhooks", h.Settings.UpdateWebhooks)
			settingsGroup.DELETE("/webhooks", h.Settings.ResetWebhooks)
			settingsGroup.GET("/chat-mode", h.Settings.GetChatMode)
			settingsGroup.PUT("/chat-mode", h.Settings.UpdateChatMode)
			settingsGroup.DELETE("/chat-mode", h.Settings.ResetChatMode)
		}
	}

	r.NoRoute(identity.Middleware(cookieSecure), h.Pages.NotFound)
	return r
}
