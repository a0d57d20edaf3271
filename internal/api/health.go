package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"autolynx-portal/internal/campaigns"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LiveCounter interface {
	Clients() int
}

type HealthHandler struct {
	DB     *gorm.DB
	Source campaigns.Source
	Live   LiveCounter
}

func NewHealthHandler(db *gorm.DB, source campaigns.Source, live LiveCounter) *HealthHandler {
	return &HealthHandler{DB: db, Source: source, Live: live}
}

// Health reports 503 only when the portal's own database is unreachable;
// campaign source problems are reported but do not fail the check.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := models.HealthResponse{Status: "ok", Database: "ok", CampaignSource: "ok"}
	code := http.StatusOK

	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		resp.Status = "unavailable"
		resp.Database = "error"
		code = http.StatusServiceUnavailable
	}

	if err := h.Source.Ping(ctx); err != nil {
		if errors.Is(err, campaigns.ErrUnavailable) {
			resp.CampaignSource = "not configured"
		} else {
			resp.CampaignSource = "error"
			if code == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	if h.Live != nil {
		resp.LiveClients = h.Live.Clients()
	}
	c.JSON(code, resp)
}
