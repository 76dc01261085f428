package stage

import (
	"context"
	"fmt"
	"log"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/memory"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/social"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/policy"
)

// Publisher posts the drafted pieces. The publish policy decides per
// platform whether the piece goes out live or is saved as a draft; draft
// pieces never touch the remote posting service. Draft-only mode is the
// auto_publish flag flowing through the policy input, not an engine branch.
type Publisher struct {
	poster social.Poster
	memory memory.Store
	policy *policy.Engine

	// storeDrafts controls whether draft-only pieces are written back to
	// the content memory for future campaigns.
	storeDrafts bool
}

// NewPublisher creates the publish stage worker.
func NewPublisher(poster social.Poster, mem memory.Store, eng *policy.Engine, storeDrafts bool) *Publisher {
	return &Publisher{poster: poster, memory: mem, policy: eng, storeDrafts: storeDrafts}
}

func (p *Publisher) Name() domain.Stage { return domain.StagePublish }

// Execute publishes or saves each drafted piece, then writes the content
// back to memory so later campaigns can learn from it. A memory write-back
// failure is logged, never fatal.
func (p *Publisher) Execute(ctx context.Context, sc *Context) (*domain.StageOutput, *domain.StageFailure) {
	draft := sc.Draft()
	if draft == nil {
		return nil, failure(domain.StagePublish, domain.FailureInvalidInput, "no draft content available")
	}

	result := &domain.PublishResult{}
	for _, piece := range draft.Pieces {
		decision, err := p.policy.Evaluate(ctx, policy.Input{
			Platform:    string(piece.Platform),
			AutoPublish: sc.Input.AutoPublish,
			Tone:        sc.Input.Tone,
		})
		if err != nil {
			return nil, failure(domain.StagePublish, domain.FailureExternalError, fmt.Sprintf("publish policy evaluation failed: %v", err))
		}

		if decision == policy.DecisionLive {
			postID, err := p.poster.Post(ctx, piece)
			if err != nil {
				return nil, failure(domain.StagePublish, classify(err), fmt.Sprintf("publish to %s failed: %v", piece.Platform, err))
			}
			piece.Published = true
			piece.PostID = postID
			result.LiveCount++
		} else {
			piece.Published = false
			result.DraftCount++
		}
		result.Pieces = append(result.Pieces, piece)

		if piece.Published || p.storeDrafts {
			id := fmt.Sprintf("%s_%s", sc.CampaignID, piece.Platform)
			meta := map[string]string{
				"campaign_id": sc.CampaignID,
				"platform":    string(piece.Platform),
				"type":        "published_content",
			}
			if err := p.memory.Upsert(ctx, id, piece.Content, meta); err != nil {
				log.Printf("WARN: failed to store content in memory for %s: %v", id, err)
			}
		}
	}

	return &domain.StageOutput{
		Stage:   domain.StagePublish,
		Publish: result,
	}, nil
}
