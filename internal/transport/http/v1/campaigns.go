package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/engine"
)

// LaunchCampaign launches a campaign asynchronously. The caller gets the
// campaign id back immediately and can watch progress over the WebSocket.
// POST /v1/campaigns
func (h *Handler) LaunchCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.LaunchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	campaignID, err := h.engine.Launch(ctx, req.Input())
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, domain.LaunchResponse{
		CampaignID:   campaignID,
		WebSocketURL: fmt.Sprintf("/ws/%s", campaignID),
		Message:      "Campaign launched. Connect to the WebSocket to watch it run.",
	})
}

// LaunchCampaignSync launches a campaign and blocks until it reaches a
// terminal state or the server-enforced maximum wait elapses. On timeout
// the campaign keeps running; the caller can poll GET /v1/campaigns/:id.
// POST /v1/campaigns/sync
func (h *Handler) LaunchCampaignSync(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.LaunchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	campaignID, err := h.engine.Launch(ctx, req.Input())
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	campaign, err := h.engine.Await(ctx, campaignID, h.syncMaxWait)
	if err != nil {
		if errors.Is(err, engine.ErrAwaitTimeout) {
			return c.JSON(http.StatusGatewayTimeout, map[string]string{
				"error":       "campaign still running after maximum wait",
				"campaign_id": campaignID,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, campaign)
}

// GetCampaign returns the current snapshot of a campaign.
// GET /v1/campaigns/:campaign_id
func (h *Handler) GetCampaign(c echo.Context) error {
	campaignID := c.Param("campaign_id")

	campaign, err := h.engine.Snapshot(campaignID)
	if err == nil {
		return c.JSON(http.StatusOK, campaign)
	}
	if !errors.Is(err, engine.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// Not live in this process: fall back to persisted history.
	stored, err := h.store.GetCampaign(c.Request().Context(), campaignID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if stored == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
	}
	return c.JSON(http.StatusOK, stored)
}

// ListCampaigns lists recent campaigns, live state overlaid on history.
// GET /v1/campaigns
func (h *Handler) ListCampaigns(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	campaigns, err := h.store.ListCampaigns(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	for i := range campaigns {
		if live, err := h.engine.Snapshot(campaigns[i].ID); err == nil {
			campaigns[i] = *live
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"campaigns": campaigns,
	})
}

// GetCampaignEvents returns the persisted stage event log of a campaign.
// GET /v1/campaigns/:campaign_id/events?after_seq=N&limit=M
func (h *Handler) GetCampaignEvents(c echo.Context) error {
	ctx := c.Request().Context()
	campaignID := c.Param("campaign_id")

	if _, err := h.engine.Snapshot(campaignID); errors.Is(err, engine.ErrNotFound) {
		if stored, serr := h.store.GetCampaign(ctx, campaignID); serr != nil || stored == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		}
	}

	afterSeq := int64(-1)
	if raw := c.QueryParam("after_seq"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			afterSeq = n
		}
	}
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.store.GetEvents(ctx, campaignID, afterSeq, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"campaign_id": campaignID,
		"events":      events,
	})
}
