package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/llm"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

// platformRules captures per-platform writing constraints.
type platformRules struct {
	maxChars int
	style    string
}

var rules = map[domain.Platform]platformRules{
	domain.PlatformLinkedIn: {
		maxChars: 3000,
		style:    "Professional, thought-leadership. Use line breaks for readability. Start with a hook. End with a CTA or question.",
	},
}

const writerSystemPrompt = `You are an expert social media copywriter. Write content
following the platform rules EXACTLY.

Return ONLY valid JSON:
{
    "content": "the post text",
    "hashtags": ["tag1", "tag2"]
}`

// Writer turns the strategic brief into platform-specific content via one
// generation call per platform.
type Writer struct {
	gen llm.Generator
}

// NewWriter creates the write stage worker.
func NewWriter(gen llm.Generator) *Writer {
	return &Writer{gen: gen}
}

func (w *Writer) Name() domain.Stage { return domain.StageWrite }

// Execute generates a draft piece for each target platform.
func (w *Writer) Execute(ctx context.Context, sc *Context) (*domain.StageOutput, *domain.StageFailure) {
	brief := sc.Brief()
	if brief == nil {
		return nil, failure(domain.StageWrite, domain.FailureInvalidInput, "no research brief available")
	}

	pieces := make([]domain.ContentPiece, 0, len(sc.Input.Platforms))
	for _, platform := range sc.Input.Platforms {
		pr, ok := rules[platform]
		if !ok {
			return nil, failure(domain.StageWrite, domain.FailureInvalidInput, fmt.Sprintf("no writing rules for platform %q", platform))
		}

		user := fmt.Sprintf(`Platform: %s
Platform Rules: %s
Max Characters: %d

Strategic Brief:
%s

Topic: %s
Tone: %s
Target Audience: %s

Write the content now. Return ONLY JSON.`,
			platform, pr.style, pr.maxChars, brief.Text,
			sc.Input.Topic, sc.Input.Tone, sc.Input.TargetAudience)

		raw, err := w.gen.Generate(ctx, writerSystemPrompt, user)
		if err != nil {
			return nil, failure(domain.StageWrite, classify(err), fmt.Sprintf("generation failed: %v", err))
		}

		content, hashtags := parseWriterResponse(raw)
		if len(content) > pr.maxChars {
			log.Printf("WARN: content exceeded %d chars, truncated", pr.maxChars)
			content = content[:pr.maxChars]
		}

		pieces = append(pieces, domain.ContentPiece{
			Platform: platform,
			Content:  content,
			Hashtags: hashtags,
		})
	}

	return &domain.StageOutput{
		Stage: domain.StageWrite,
		Draft: &domain.Draft{Pieces: pieces},
	}, nil
}

// parseWriterResponse extracts {content, hashtags} from the model output.
// Code fences are stripped; malformed JSON falls back to the raw text.
func parseWriterResponse(raw string) (string, []string) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		if i := strings.Index(trimmed, "\n"); i >= 0 {
			trimmed = trimmed[i+1:]
		}
		if i := strings.LastIndex(trimmed, "```"); i >= 0 {
			trimmed = trimmed[:i]
		}
	}

	var parsed struct {
		Content  string   `json:"content"`
		Hashtags []string `json:"hashtags"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil || parsed.Content == "" {
		return raw, nil
	}
	return parsed.Content, parsed.Hashtags
}
