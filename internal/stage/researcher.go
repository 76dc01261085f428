package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/memory"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

const researchTopK = 5

// Researcher queries the content memory for past high-performing posts on
// similar topics and distills them into a strategic brief for the writer.
type Researcher struct {
	memory memory.Store
}

// NewResearcher creates the research stage worker.
func NewResearcher(mem memory.Store) *Researcher {
	return &Researcher{memory: mem}
}

func (r *Researcher) Name() domain.Stage { return domain.StageResearch }

// Execute runs the similarity search and composes the brief. An empty result
// set is a success; the topic is simply fresh.
func (r *Researcher) Execute(ctx context.Context, sc *Context) (*domain.StageOutput, *domain.StageFailure) {
	matches, err := r.memory.Query(ctx, sc.Input.Topic, researchTopK)
	if err != nil {
		return nil, failure(domain.StageResearch, classify(err), fmt.Sprintf("similarity search failed: %v", err))
	}

	return &domain.StageOutput{
		Stage: domain.StageResearch,
		Brief: &domain.Brief{
			Text:        composeBrief(sc.Input, matches),
			SourceCount: len(matches),
		},
	}, nil
}

// composeBrief renders the strategy brief the writer prompt consumes.
func composeBrief(in domain.CampaignInput, matches []memory.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Target audience: %s\n", in.TargetAudience)
	fmt.Fprintf(&b, "Tone: %s\n", in.Tone)
	platforms := make([]string, len(in.Platforms))
	for i, p := range in.Platforms {
		platforms[i] = string(p)
	}
	fmt.Fprintf(&b, "Platforms: %s\n\n", strings.Join(platforms, ", "))

	if len(matches) == 0 {
		b.WriteString("No past content found; this is a fresh topic. Lead with a strong hook and a clear point of view.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Past high-performing content on similar topics (%d found):\n", len(matches))
	for _, m := range matches {
		content := m.Content
		if len(content) > 200 {
			content = content[:200]
		}
		fmt.Fprintf(&b, "- [score %.2f] %s\n", m.Score, content)
	}
	b.WriteString("\nAngles that already resonated are listed above; avoid repeating them verbatim and find the next take on the same theme.\n")
	return b.String()
}
