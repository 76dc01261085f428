package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/llm"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/memory"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/social"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/engine"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/eventbus"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/registry"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/stage"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/store"
	v1 "github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/transport/http/v1"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/policy"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/tests/helpers"
)

type fixture struct {
	handler *v1.Handler
	engine  *engine.Engine
	store   *store.SQLiteStore
	poster  *social.MockPoster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := helpers.NewTestSQLiteStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	assert.NoError(t, err)

	mem := memory.NewMockStore()
	poster := social.NewMockPoster()
	workers := []stage.Worker{
		stage.NewResearcher(mem),
		stage.NewWriter(llm.NewMockClient()),
		stage.NewPublisher(poster, mem, policyEngine, true),
	}
	eng := engine.New(registry.New(), eventbus.New(64), st, workers, 5*time.Second)

	return &fixture{
		handler: v1.NewHandler(eng, st, 5*time.Second),
		engine:  eng,
		store:   st,
		poster:  poster,
	}
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLaunchCampaign(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	c, rec := postJSON(e, "/v1/campaigns", `{"topic":"AI agents are replacing SaaS tools"}`)
	err := f.handler.LaunchCampaign(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp domain.LaunchResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CampaignID)
	assert.Equal(t, "/ws/"+resp.CampaignID, resp.WebSocketURL)

	// The campaign is registered and runs to completion in the background.
	done, err := f.engine.Await(context.Background(), resp.CampaignID, 5*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusCompleted, done.Status)
}

func TestLaunchCampaignValidation(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	t.Run("missing topic", func(t *testing.T) {
		c, rec := postJSON(e, "/v1/campaigns", `{"tone":"casual"}`)
		assert.NoError(t, f.handler.LaunchCampaign(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown platform", func(t *testing.T) {
		c, rec := postJSON(e, "/v1/campaigns", `{"topic":"x","platforms":["myspace"]}`)
		assert.NoError(t, f.handler.LaunchCampaign(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		c, rec := postJSON(e, "/v1/campaigns", `{"topic":`)
		assert.NoError(t, f.handler.LaunchCampaign(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLaunchCampaignSync(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	c, rec := postJSON(e, "/v1/campaigns/sync", `{"topic":"AI agents are replacing SaaS tools","auto_publish":true}`)
	err := f.handler.LaunchCampaignSync(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var campaign domain.Campaign
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &campaign))
	assert.Equal(t, domain.CampaignStatusCompleted, campaign.Status)
	assert.Len(t, campaign.StageOutputs, 3)

	// auto_publish on: the mock poster saw the piece.
	assert.Len(t, f.poster.Posts(), 1)
}

func TestGetCampaign(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/cmp_missing", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("campaign_id")
		c.SetParamValues("cmp_missing")

		assert.NoError(t, f.handler.GetCampaign(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("live campaign", func(t *testing.T) {
		id, err := f.engine.Launch(context.Background(), domain.CampaignInput{Topic: "quantum hiring"})
		assert.NoError(t, err)
		_, err = f.engine.Await(context.Background(), id, 5*time.Second)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/"+id, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("campaign_id")
		c.SetParamValues(id)

		assert.NoError(t, f.handler.GetCampaign(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var campaign domain.Campaign
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &campaign))
		assert.Equal(t, id, campaign.ID)
		assert.Equal(t, "quantum hiring", campaign.Input.Topic)
	})

	t.Run("persisted campaign from a previous process", func(t *testing.T) {
		// Present in the store but not in the live registry.
		old := &domain.Campaign{
			ID:        "cmp_historic",
			Input:     domain.CampaignInput{Topic: "old topic", Platforms: []domain.Platform{domain.PlatformLinkedIn}},
			Status:    domain.CampaignStatusCompleted,
			CreatedAt: time.Now().Add(-24 * time.Hour),
		}
		assert.NoError(t, f.store.CreateCampaign(context.Background(), old))
		assert.NoError(t, f.store.SaveCampaign(context.Background(), old))

		req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/cmp_historic", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("campaign_id")
		c.SetParamValues("cmp_historic")

		assert.NoError(t, f.handler.GetCampaign(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestListCampaigns(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	id, err := f.engine.Launch(context.Background(), domain.CampaignInput{Topic: "first"})
	assert.NoError(t, err)
	_, err = f.engine.Await(context.Background(), id, 5*time.Second)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/campaigns", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, f.handler.ListCampaigns(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Campaigns []domain.Campaign `json:"campaigns"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Campaigns, 1)
	assert.Equal(t, id, resp.Campaigns[0].ID)
	assert.Equal(t, domain.CampaignStatusCompleted, resp.Campaigns[0].Status)
}

func TestGetCampaignEvents(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/cmp_missing/events", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("campaign_id")
		c.SetParamValues("cmp_missing")

		assert.NoError(t, f.handler.GetCampaignEvents(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("full log and cursor", func(t *testing.T) {
		id, err := f.engine.Launch(context.Background(), domain.CampaignInput{Topic: "events"})
		assert.NoError(t, err)
		_, err = f.engine.Await(context.Background(), id, 5*time.Second)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/"+id+"/events", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("campaign_id")
		c.SetParamValues(id)

		assert.NoError(t, f.handler.GetCampaignEvents(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			CampaignID string              `json:"campaign_id"`
			Events     []domain.StageEvent `json:"events"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.CampaignID)
		assert.Len(t, resp.Events, 6)
		assert.True(t, resp.Events[5].Final)

		// Resume past the first three events.
		req = httptest.NewRequest(http.MethodGet, "/v1/campaigns/"+id+"/events?after_seq=2", nil)
		rec = httptest.NewRecorder()
		c = e.NewContext(req, rec)
		c.SetParamNames("campaign_id")
		c.SetParamValues(id)

		assert.NoError(t, f.handler.GetCampaignEvents(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Events, 3)
		assert.Equal(t, uint64(3), resp.Events[0].Seq)
	})
}

func TestHealth(t *testing.T) {
	e := echo.New()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, f.handler.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
