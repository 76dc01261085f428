package domain

import (
	"fmt"
	"strings"
	"time"
)

// CampaignInput is the immutable input of a campaign, fixed at launch.
type CampaignInput struct {
	Topic          string     `json:"topic"`
	Platforms      []Platform `json:"platforms"`
	Tone           string     `json:"tone"`
	TargetAudience string     `json:"target_audience"`
	AutoPublish    bool       `json:"auto_publish"`
}

// Normalize fills defaults and validates the input. A non-nil error means
// the input never reaches the engine.
func (in *CampaignInput) Normalize() error {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if len(in.Platforms) == 0 {
		in.Platforms = []Platform{PlatformLinkedIn}
	}
	for _, p := range in.Platforms {
		if !KnownPlatform(p) {
			return fmt.Errorf("unknown platform %q", p)
		}
	}
	if in.Tone == "" {
		in.Tone = "professional"
	}
	if in.TargetAudience == "" {
		in.TargetAudience = "tech professionals"
	}
	return nil
}

// ContentPiece is one platform-specific piece of generated content.
type ContentPiece struct {
	Platform  Platform `json:"platform"`
	Content   string   `json:"content"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Published bool     `json:"published"`
	PostID    string   `json:"post_id,omitempty"`
}

// Brief is the research stage output.
type Brief struct {
	Text        string `json:"text"`
	SourceCount int    `json:"source_count"`
}

// Draft is the write stage output.
type Draft struct {
	Pieces []ContentPiece `json:"pieces"`
}

// PublishResult is the publish stage output. Draft-mode pieces carry a
// confirmation without a remote post id.
type PublishResult struct {
	Pieces     []ContentPiece `json:"pieces"`
	LiveCount  int            `json:"live_count"`
	DraftCount int            `json:"draft_count"`
}

// StageOutput is the tagged result of one completed stage. Exactly one of
// Brief/Draft/Publish is set, matching Stage.
type StageOutput struct {
	Stage   Stage          `json:"stage"`
	Brief   *Brief         `json:"brief,omitempty"`
	Draft   *Draft         `json:"draft,omitempty"`
	Publish *PublishResult `json:"publish,omitempty"`
}

// StageFailure records why a stage failed. It is a value, not an error:
// workers convert collaborator faults at their boundary and the engine
// pattern-matches on it.
type StageFailure struct {
	Stage   Stage         `json:"stage"`
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

// Campaign is one end-to-end run of the pipeline. It is mutated only by the
// owning engine goroutine; everything handed out is a deep copy.
type Campaign struct {
	ID           string         `json:"campaign_id"`
	Input        CampaignInput  `json:"input"`
	Status       CampaignStatus `json:"status"`
	StageOutputs []StageOutput  `json:"stage_outputs"`
	Error        *StageFailure  `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
}

// Clone returns a deep copy safe to hand to readers.
func (c *Campaign) Clone() *Campaign {
	cp := *c
	cp.Input.Platforms = append([]Platform(nil), c.Input.Platforms...)
	cp.StageOutputs = make([]StageOutput, len(c.StageOutputs))
	copy(cp.StageOutputs, c.StageOutputs)
	if c.Error != nil {
		e := *c.Error
		cp.Error = &e
	}
	if c.EndedAt != nil {
		t := *c.EndedAt
		cp.EndedAt = &t
	}
	return &cp
}
