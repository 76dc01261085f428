// Package policy decides whether a campaign may publish live to a platform
// or must be downgraded to a saved draft.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the publish policy.
const (
	DecisionLive  = "live"
	DecisionDraft = "draft"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.publish_policy.decision"),
		rego.Module("publish_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input is the evaluation input for one platform of one campaign.
type Input struct {
	Platform    string `json:"platform"`
	AutoPublish bool   `json:"auto_publish"`
	Tone        string `json:"tone"`
}

// Evaluate returns DecisionLive or DecisionDraft. The policy is expected to
// define a default; an empty result falls back to draft, the safe side.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionDraft, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionDraft, nil
}

// DefaultPolicy is the default publish policy: live posting only when the
// caller asked for auto-publish and the platform is one we can post to.
const DefaultPolicy = `
package publish_policy

default decision = "draft"

decision = "live" {
	input.auto_publish
	input.platform == "linkedin"
}
`
