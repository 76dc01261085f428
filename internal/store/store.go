// Package store persists campaign history and stage events.
package store

import (
	"context"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

// Store defines the persistence interface for campaign history. The
// in-memory registry stays authoritative while a campaign runs; the store
// keeps the durable record and the replayable event log.
type Store interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	SaveCampaign(ctx context.Context, c *domain.Campaign) error
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error)

	CreateEvent(ctx context.Context, ev *domain.StageEvent) error
	GetEvents(ctx context.Context, campaignID string, afterSeq int64, limit int) ([]domain.StageEvent, error)

	Close() error
}
