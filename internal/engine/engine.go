// Package engine drives campaigns through the pipeline. One goroutine owns
// each campaign: it runs the stage workers strictly in sequence, publishes a
// stage event before every registry commit, and closes the campaign's topic
// once a terminal state is reached.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/eventbus"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/registry"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/stage"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/store"
)

var (
	// ErrInvalidInput is returned when a launch request fails validation.
	ErrInvalidInput = errors.New("invalid campaign input")
	// ErrAwaitTimeout is returned when Await gives up waiting. The campaign
	// keeps running.
	ErrAwaitTimeout = errors.New("await timed out")
	// ErrNotFound is returned for unknown campaign ids.
	ErrNotFound = registry.ErrNotFound
)

// Engine owns campaign execution.
type Engine struct {
	registry *registry.Registry
	bus      *eventbus.Bus
	store    store.Store
	workers  []stage.Worker

	stageTimeout time.Duration
}

// New creates an engine. Workers must be in pipeline order.
func New(reg *registry.Registry, bus *eventbus.Bus, st store.Store, workers []stage.Worker, stageTimeout time.Duration) *Engine {
	if stageTimeout <= 0 {
		stageTimeout = 2 * time.Minute
	}
	return &Engine{
		registry:     reg,
		bus:          bus,
		store:        st,
		workers:      workers,
		stageTimeout: stageTimeout,
	}
}

// Launch validates the input, registers a pending campaign and schedules its
// execution. It returns as soon as the campaign is registered.
func (e *Engine) Launch(ctx context.Context, input domain.CampaignInput) (string, error) {
	if err := input.Normalize(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	c := &domain.Campaign{
		ID:        registry.NewCampaignID(),
		Input:     input,
		Status:    domain.CampaignStatusPending,
		CreatedAt: time.Now(),
	}
	e.registry.Create(c)

	if err := e.store.CreateCampaign(ctx, c); err != nil {
		log.Printf("ERROR: failed to persist campaign %s: %v", c.ID, err)
		// History is best effort; the in-memory campaign still runs.
	}

	go e.run(c.ID, input)
	return c.ID, nil
}

// Snapshot returns the current state of a campaign.
func (e *Engine) Snapshot(campaignID string) (*domain.Campaign, error) {
	return e.registry.Get(campaignID)
}

// Await blocks until the campaign reaches a terminal state, the timeout
// elapses, or ctx is cancelled. A timeout cancels only this wait.
func (e *Engine) Await(ctx context.Context, campaignID string, timeout time.Duration) (*domain.Campaign, error) {
	done, err := e.registry.Done(campaignID)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return e.registry.Get(campaignID)
	case <-timer.C:
		return nil, ErrAwaitTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes the pipeline for one campaign. It is the only goroutine that
// mutates this campaign's registry entry.
func (e *Engine) run(campaignID string, input domain.CampaignInput) {
	sc := &stage.Context{CampaignID: campaignID, Input: input}

	for i, w := range e.workers {
		st := w.Name()
		last := i == len(e.workers)-1

		e.publish(&domain.StageEvent{
			CampaignID: campaignID,
			Stage:      st,
			Kind:       domain.EventKindStarted,
			Message:    startMessage(st, input),
		})
		if err := e.registry.Update(campaignID, func(c *domain.Campaign) {
			c.Status = st.RunningStatus()
		}); err != nil {
			log.Printf("ERROR: campaign %s vanished from registry: %v", campaignID, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.stageTimeout)
		output, stageFailure := w.Execute(ctx, sc)
		cancel()

		if stageFailure != nil {
			e.fail(campaignID, stageFailure)
			return
		}

		payload, _ := json.Marshal(summarize(output))
		e.publish(&domain.StageEvent{
			CampaignID: campaignID,
			Stage:      st,
			Kind:       domain.EventKindSucceeded,
			Message:    successMessage(output),
			Payload:    payload,
			Final:      last,
		})

		sc.Outputs = append(sc.Outputs, *output)
		if err := e.registry.Update(campaignID, func(c *domain.Campaign) {
			c.StageOutputs = append(c.StageOutputs, *output)
			if last {
				c.Status = domain.CampaignStatusCompleted
				now := time.Now()
				c.EndedAt = &now
			}
		}); err != nil {
			log.Printf("ERROR: campaign %s vanished from registry: %v", campaignID, err)
			return
		}
	}

	e.finish(campaignID)
}

// fail moves the campaign to Failed: terminal failed event first, then the
// registry commit, then persistence and stream closure.
func (e *Engine) fail(campaignID string, sf *domain.StageFailure) {
	log.Printf("ERROR: campaign %s failed at stage %s: %s (%s)", campaignID, sf.Stage, sf.Message, sf.Reason)

	payload, _ := json.Marshal(sf)
	e.publish(&domain.StageEvent{
		CampaignID: campaignID,
		Stage:      sf.Stage,
		Kind:       domain.EventKindFailed,
		Message:    fmt.Sprintf("%s stage failed: %s", sf.Stage, sf.Message),
		Payload:    payload,
		Final:      true,
	})

	if err := e.registry.Update(campaignID, func(c *domain.Campaign) {
		c.Status = domain.CampaignStatusFailed
		c.Error = sf
		now := time.Now()
		c.EndedAt = &now
	}); err != nil {
		log.Printf("ERROR: campaign %s vanished from registry: %v", campaignID, err)
	}

	e.finish(campaignID)
}

// finish persists the terminal snapshot and closes the campaign's stream.
func (e *Engine) finish(campaignID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c, err := e.registry.Get(campaignID); err == nil {
		if err := e.store.SaveCampaign(ctx, c); err != nil {
			log.Printf("ERROR: failed to persist final state of campaign %s: %v", campaignID, err)
		}
	}
	e.bus.CloseTopic(campaignID)
}

// publish stamps, broadcasts and records one stage event.
func (e *Engine) publish(ev *domain.StageEvent) {
	ev.EventID = "evt_" + uuid.New().String()[:8]
	ev.Ts = time.Now().UnixMilli()

	if err := e.bus.Publish(ev); err != nil {
		log.Printf("ERROR: failed to publish event for campaign %s: %v", ev.CampaignID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.store.CreateEvent(ctx, ev); err != nil {
		log.Printf("ERROR: failed to record event %s: %v", ev.EventID, err)
	}
}

func startMessage(st domain.Stage, input domain.CampaignInput) string {
	switch st {
	case domain.StageResearch:
		return fmt.Sprintf("Searching past content for '%s'...", input.Topic)
	case domain.StageWrite:
		return "Writing platform content..."
	case domain.StagePublish:
		if input.AutoPublish {
			return "Publishing content..."
		}
		return "Saving content as drafts (auto-publish off)..."
	}
	return string(st) + " started"
}

func successMessage(out *domain.StageOutput) string {
	switch {
	case out.Brief != nil:
		return fmt.Sprintf("Research complete: brief ready (%d past posts reviewed)", out.Brief.SourceCount)
	case out.Draft != nil:
		return fmt.Sprintf("Draft ready: %d piece(s) written", len(out.Draft.Pieces))
	case out.Publish != nil:
		return fmt.Sprintf("Publish complete: %d live, %d saved as drafts", out.Publish.LiveCount, out.Publish.DraftCount)
	}
	return string(out.Stage) + " succeeded"
}

// eventSummary is the payload attached to succeeded events: enough for a
// dashboard without shipping full stage outputs down every socket.
type eventSummary struct {
	BriefPreview string   `json:"brief_preview,omitempty"`
	SourceCount  int      `json:"source_count,omitempty"`
	Previews     []string `json:"previews,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
	LiveCount    int      `json:"live_count,omitempty"`
	DraftCount   int      `json:"draft_count,omitempty"`
	PostIDs      []string `json:"post_ids,omitempty"`
}

func summarize(out *domain.StageOutput) eventSummary {
	var s eventSummary
	switch {
	case out.Brief != nil:
		s.BriefPreview = preview(out.Brief.Text)
		s.SourceCount = out.Brief.SourceCount
	case out.Draft != nil:
		for _, p := range out.Draft.Pieces {
			s.Previews = append(s.Previews, preview(p.Content))
			s.Hashtags = append(s.Hashtags, p.Hashtags...)
		}
	case out.Publish != nil:
		s.LiveCount = out.Publish.LiveCount
		s.DraftCount = out.Publish.DraftCount
		for _, p := range out.Publish.Pieces {
			if p.PostID != "" {
				s.PostIDs = append(s.PostIDs, p.PostID)
			}
		}
	}
	return s
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
