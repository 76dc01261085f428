// Package v1 provides the REST handlers for the platform.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/engine"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/store"
)

// Handler handles HTTP requests.
type Handler struct {
	engine      *engine.Engine
	store       store.Store
	syncMaxWait time.Duration
}

// NewHandler creates a new handler. syncMaxWait bounds how long the
// synchronous launch endpoint blocks.
func NewHandler(eng *engine.Engine, st store.Store, syncMaxWait time.Duration) *Handler {
	if syncMaxWait <= 0 {
		syncMaxWait = 5 * time.Minute
	}
	return &Handler{
		engine:      eng,
		store:       st,
		syncMaxWait: syncMaxWait,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/campaigns", h.LaunchCampaign)
	e.POST("/v1/campaigns/sync", h.LaunchCampaignSync)
	e.GET("/v1/campaigns", h.ListCampaigns)
	e.GET("/v1/campaigns/:campaign_id", h.GetCampaign)
	e.GET("/v1/campaigns/:campaign_id/events", h.GetCampaignEvents)

	e.GET("/health", h.Health)
}

// Health returns process liveness only.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
