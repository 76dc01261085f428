package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedCampaign(t *testing.T, s *SQLiteStore, id string, createdAt time.Time) *domain.Campaign {
	t.Helper()
	c := &domain.Campaign{
		ID: id,
		Input: domain.CampaignInput{
			Topic:     "AI agents",
			Platforms: []domain.Platform{domain.PlatformLinkedIn},
			Tone:      "professional",
		},
		Status:    domain.CampaignStatusPending,
		CreatedAt: createdAt,
	}
	if err := s.CreateCampaign(context.Background(), c); err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	return c
}

func TestCampaignRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCampaign(t, s, "cmp_1", time.Now())

	// Complete the campaign with outputs.
	now := time.Now()
	c.Status = domain.CampaignStatusCompleted
	c.EndedAt = &now
	c.StageOutputs = []domain.StageOutput{
		{Stage: domain.StageResearch, Brief: &domain.Brief{Text: "brief", SourceCount: 2}},
		{Stage: domain.StageWrite, Draft: &domain.Draft{Pieces: []domain.ContentPiece{{
			Platform: domain.PlatformLinkedIn, Content: "post",
		}}}},
	}
	if err := s.SaveCampaign(ctx, c); err != nil {
		t.Fatalf("SaveCampaign failed: %v", err)
	}

	got, err := s.GetCampaign(ctx, "cmp_1")
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if got == nil {
		t.Fatal("campaign not found after save")
	}
	if got.Status != domain.CampaignStatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if got.Input.Topic != "AI agents" {
		t.Fatalf("topic = %q", got.Input.Topic)
	}
	if len(got.StageOutputs) != 2 {
		t.Fatalf("stage outputs = %d, want 2", len(got.StageOutputs))
	}
	if got.StageOutputs[0].Brief == nil || got.StageOutputs[0].Brief.SourceCount != 2 {
		t.Fatalf("brief did not survive round trip: %+v", got.StageOutputs[0])
	}
	if got.EndedAt == nil {
		t.Fatal("ended_at missing")
	}
	if got.Error != nil {
		t.Fatalf("unexpected error: %+v", got.Error)
	}
}

func TestSaveFailedCampaign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCampaign(t, s, "cmp_1", time.Now())

	now := time.Now()
	c.Status = domain.CampaignStatusFailed
	c.EndedAt = &now
	c.Error = &domain.StageFailure{
		Stage:   domain.StageWrite,
		Reason:  domain.FailureExternalTimeout,
		Message: "generation timed out",
	}
	if err := s.SaveCampaign(ctx, c); err != nil {
		t.Fatalf("SaveCampaign failed: %v", err)
	}

	got, err := s.GetCampaign(ctx, "cmp_1")
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if got.Error == nil {
		t.Fatal("failure not persisted")
	}
	if got.Error.Reason != domain.FailureExternalTimeout || got.Error.Stage != domain.StageWrite {
		t.Fatalf("unexpected failure: %+v", got.Error)
	}
}

func TestGetCampaignUnknown(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetCampaign(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown campaign, got %+v", got)
	}
}

func TestListCampaignsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()
	seedCampaign(t, s, "cmp_old", base.Add(-2*time.Hour))
	seedCampaign(t, s, "cmp_mid", base.Add(-time.Hour))
	seedCampaign(t, s, "cmp_new", base)

	got, err := s.ListCampaigns(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d campaigns, want 2", len(got))
	}
	if got[0].ID != "cmp_new" || got[1].ID != "cmp_mid" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestEventLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCampaign(t, s, "cmp_1", time.Now())

	stages := []domain.Stage{domain.StageResearch, domain.StageResearch, domain.StageWrite}
	kinds := []domain.EventKind{domain.EventKindStarted, domain.EventKindSucceeded, domain.EventKindStarted}
	for i := 0; i < 3; i++ {
		ev := &domain.StageEvent{
			EventID:    "evt_" + string(rune('a'+i)),
			CampaignID: "cmp_1",
			Seq:        uint64(i),
			Stage:      stages[i],
			Kind:       kinds[i],
			Message:    "msg",
			Payload:    json.RawMessage(`{"k":"v"}`),
			Ts:         time.Now().UnixMilli(),
			Final:      i == 2,
		}
		if err := s.CreateEvent(ctx, ev); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	events, err := s.GetEvents(ctx, "cmp_1", -1, 100)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, ev := range events {
		if ev.Seq != uint64(i) {
			t.Fatalf("event %d has seq %d", i, ev.Seq)
		}
	}
	if !events[2].Final {
		t.Fatal("final flag did not survive")
	}
	if string(events[0].Payload) != `{"k":"v"}` {
		t.Fatalf("payload = %s", events[0].Payload)
	}

	// Resume from a cursor.
	tail, err := s.GetEvents(ctx, "cmp_1", 0, 100)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(tail) != 2 || tail[0].Seq != 1 {
		t.Fatalf("after_seq cursor broken: %+v", tail)
	}
}

func TestDuplicateSeqRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCampaign(t, s, "cmp_1", time.Now())

	ev := &domain.StageEvent{EventID: "evt_1", CampaignID: "cmp_1", Seq: 0, Stage: domain.StageResearch, Kind: domain.EventKindStarted, Ts: 1}
	if err := s.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	dup := &domain.StageEvent{EventID: "evt_2", CampaignID: "cmp_1", Seq: 0, Stage: domain.StageResearch, Kind: domain.EventKindStarted, Ts: 2}
	if err := s.CreateEvent(ctx, dup); err == nil {
		t.Fatal("expected unique index violation for duplicate seq")
	}
}
