// Package registry holds the process-wide table of live campaign state.
// Each entry is mutated only by the engine goroutine that owns the campaign;
// readers always get deep copies, so snapshots never race with the owner.
package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

// ErrNotFound is returned for unknown campaign ids.
var ErrNotFound = errors.New("campaign not found")

type entry struct {
	mu       sync.Mutex
	campaign *domain.Campaign
	done     chan struct{}
}

// Registry is the campaign id → state table.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// NewCampaignID generates a fresh campaign id.
func NewCampaignID() string {
	return "cmp_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Create registers a new pending campaign and returns a snapshot of it.
// IDs are unique under concurrent creates.
func (r *Registry) Create(c *domain.Campaign) *domain.Campaign {
	e := &entry{campaign: c, done: make(chan struct{})}

	r.mu.Lock()
	r.entries[c.ID] = e
	r.mu.Unlock()

	return c.Clone()
}

func (r *Registry) entry(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Get returns a snapshot of the campaign, or ErrNotFound.
func (r *Registry) Get(id string) (*domain.Campaign, error) {
	e, ok := r.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.campaign.Clone(), nil
}

// Update applies an atomic read-modify-write to a single campaign. Only the
// owning engine goroutine calls this. When the mutation moves the campaign
// into a terminal state, waiters are released.
func (r *Registry) Update(id string, mutate func(*domain.Campaign)) error {
	e, ok := r.entry(id)
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	wasTerminal := e.campaign.Status.IsTerminal()
	mutate(e.campaign)
	nowTerminal := e.campaign.Status.IsTerminal()
	e.mu.Unlock()

	if nowTerminal && !wasTerminal {
		close(e.done)
	}
	return nil
}

// Done returns a channel closed when the campaign reaches a terminal state.
func (r *Registry) Done(id string) (<-chan struct{}, error) {
	e, ok := r.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e.done, nil
}

// List returns snapshots of all campaigns, most recent first.
func (r *Registry) List() []*domain.Campaign {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	campaigns := make([]*domain.Campaign, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		campaigns = append(campaigns, e.campaign.Clone())
		e.mu.Unlock()
	}
	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return campaigns
}

// Count returns the number of registered campaigns.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
