package domain

import "encoding/json"

// StageEvent is an immutable record of a stage boundary, broadcast to live
// viewers and persisted for replay. Seq is monotonic and gapless per
// campaign, starting at 0.
type StageEvent struct {
	EventID    string          `json:"event_id"`
	CampaignID string          `json:"campaign_id"`
	Seq        uint64          `json:"seq"`
	Stage      Stage           `json:"stage"`
	Kind       EventKind       `json:"kind"`
	Message    string          `json:"message,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Ts         int64           `json:"ts"` // Unix milliseconds
	Final      bool            `json:"final,omitempty"`
}
