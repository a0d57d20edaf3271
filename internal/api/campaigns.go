package api

import (
	"errors"
	"net/http"
	"time"

	"autolynx-portal/internal/campaigns"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	Source campaigns.Source
	Logger *zap.Logger
	Now    func() time.Time
}

func NewCampaignHandler(source campaigns.Source, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{Source: source, Logger: logger, Now: time.Now}
}

func (h *CampaignHandler) sourceError(c *gin.Context, what string, err error) {
	if errors.Is(err, campaigns.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	h.Logger.Error("campaign source failed", zap.String("query", what), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch " + what})
}

// ListCampaigns returns every campaign with its progress and badge.
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	stats, err := h.Source.CampaignStats(c.Request.Context())
	if err != nil {
		h.sourceError(c, "campaigns", err)
		return
	}
	c.JSON(http.StatusOK, campaigns.Summaries(stats))
}

func (h *CampaignHandler) GetContacts(c *gin.Context) {
	id := c.Param("id")
	list, err := h.Source.Contacts(c.Request.Context(), id)
	if err != nil {
		h.sourceError(c, "contacts", err)
		return
	}
	if list == nil {
		list = []campaigns.CallContact{}
	}
	c.JSON(http.StatusOK, models.CampaignContactsResponse{
		CampaignID: id,
		Stats:      campaigns.Detail(list),
		Contacts:   list,
	})
}

func (h *CampaignHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.Source.CampaignStats(ctx)
	if err != nil {
		h.sourceError(c, "dashboard stats", err)
		return
	}
	recent, err := h.Source.RecentContacts(ctx)
	if err != nil {
		h.sourceError(c, "dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, campaigns.Dashboard(stats, recent, h.Now()))
}
