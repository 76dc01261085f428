// Package eventbus provides per-campaign fanout of stage events to live
// viewers. One publisher (the campaign engine) feeds a set of bounded
// per-subscriber queues; a slow viewer is dropped rather than ever blocking
// the publisher or other viewers.
package eventbus

import (
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

var (
	// ErrTopicClosed is returned when publishing to a closed topic.
	ErrTopicClosed = errors.New("topic closed")
)

// Subscription is one viewer attached to one campaign's event stream.
// Events arrive on Events() in publish order with no gaps or duplicates.
// The channel is closed when the topic closes, the viewer unsubscribes, or
// the viewer falls too far behind (Lost reports the last case).
type Subscription struct {
	ID         string
	CampaignID string

	ch    chan *domain.StageEvent
	topic *topic

	mu     sync.Mutex
	closed bool
	lost   bool
}

// Events returns the delivery channel.
func (s *Subscription) Events() <-chan *domain.StageEvent {
	return s.ch
}

// Lost reports whether the subscription was dropped on buffer overflow.
func (s *Subscription) Lost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

func (s *Subscription) close(lost bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.lost = lost
	close(s.ch)
}

// topic holds the per-campaign sequence counter, the replayable history and
// the live subscriber set. Everything is guarded by its own mutex so
// unrelated campaigns never contend.
type topic struct {
	mu         sync.Mutex
	campaignID string
	nextSeq    uint64
	history    []*domain.StageEvent
	subs       map[string]*Subscription
	closed     bool
}

// Bus is the process-wide event bus, topics keyed by campaign id.
type Bus struct {
	mu      sync.RWMutex
	topics  map[string]*topic
	bufSize int
}

// New creates a bus. bufSize bounds each subscriber's delivery buffer for
// live events; history replay is sized separately on attach.
func New(bufSize int) *Bus {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Bus{
		topics:  make(map[string]*topic),
		bufSize: bufSize,
	}
}

func (b *Bus) getOrCreateTopic(campaignID string) *topic {
	b.mu.RLock()
	t, ok := b.topics[campaignID]
	b.mu.RUnlock()
	if ok {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[campaignID]; ok {
		return t
	}
	t = &topic{
		campaignID: campaignID,
		subs:       make(map[string]*Subscription),
	}
	b.topics[campaignID] = t
	return t
}

// Publish stamps the event with the topic's next sequence number and
// delivers it to every attached subscriber. It never blocks: a subscriber
// whose buffer is full is dropped and its stream marked lost.
func (b *Bus) Publish(ev *domain.StageEvent) error {
	t := b.getOrCreateTopic(ev.CampaignID)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTopicClosed
	}
	ev.Seq = t.nextSeq
	t.nextSeq++
	t.history = append(t.history, ev)

	var dropped []*Subscription
	for id, sub := range t.subs {
		select {
		case sub.ch <- ev:
		default:
			log.Printf("WARN: subscriber %s on campaign %s overflowed, dropping", id, ev.CampaignID)
			delete(t.subs, id)
			dropped = append(dropped, sub)
		}
	}
	t.mu.Unlock()

	for _, sub := range dropped {
		sub.close(true)
	}
	return nil
}

// Subscribe attaches a viewer to a campaign's stream. The subscriber first
// receives every event already published for the campaign (replay), then
// live events, strictly in order. Subscribing to a closed topic replays the
// history and closes the channel immediately.
func (b *Bus) Subscribe(campaignID string) *Subscription {
	t := b.getOrCreateTopic(campaignID)

	t.mu.Lock()
	sub := &Subscription{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		ch:         make(chan *domain.StageEvent, len(t.history)+b.bufSize),
		topic:      t,
	}
	for _, ev := range t.history {
		sub.ch <- ev
	}
	if t.closed {
		t.mu.Unlock()
		sub.close(false)
		return sub
	}
	t.subs[sub.ID] = sub
	t.mu.Unlock()
	return sub
}

// Unsubscribe detaches a viewer. Safe to call repeatedly or after the topic
// has closed.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	t := sub.topic
	t.mu.Lock()
	delete(t.subs, sub.ID)
	t.mu.Unlock()
	sub.close(false)
}

// CloseTopic marks the campaign's stream closed. Further publishes are
// rejected; every subscriber's channel drains its buffered events (ending
// with the terminal marker the engine published last) and then closes.
func (b *Bus) CloseTopic(campaignID string) {
	b.mu.RLock()
	t, ok := b.topics[campaignID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	subs := make([]*Subscription, 0, len(t.subs))
	for id, sub := range t.subs {
		delete(t.subs, id)
		subs = append(subs, sub)
	}
	t.mu.Unlock()

	for _, sub := range subs {
		sub.close(false)
	}
}

// SubscriberCount returns the number of live subscribers on a campaign.
func (b *Bus) SubscriberCount(campaignID string) int {
	b.mu.RLock()
	t, ok := b.topics[campaignID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// TopicCount returns the number of topics seen by the bus.
func (b *Bus) TopicCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics)
}
