// Package stage implements the pipeline stage workers. Each worker is a
// stateless function from (campaign input, prior outputs) to a tagged
// outcome; collaborator faults are converted to typed failures at this
// boundary and never propagate into the engine as errors or panics.
package stage

import (
	"context"
	"errors"
	"net"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

// Context bundles the immutable campaign input with the outputs of the
// stages that already ran.
type Context struct {
	CampaignID string
	Input      domain.CampaignInput
	Outputs    []domain.StageOutput
}

// Brief returns the research stage output, if present.
func (c *Context) Brief() *domain.Brief {
	for _, o := range c.Outputs {
		if o.Stage == domain.StageResearch {
			return o.Brief
		}
	}
	return nil
}

// Draft returns the write stage output, if present.
func (c *Context) Draft() *domain.Draft {
	for _, o := range c.Outputs {
		if o.Stage == domain.StageWrite {
			return o.Draft
		}
	}
	return nil
}

// Worker executes one pipeline stage.
type Worker interface {
	Name() domain.Stage

	// Execute runs the stage. Exactly one of output/failure is non-nil.
	Execute(ctx context.Context, sc *Context) (*domain.StageOutput, *domain.StageFailure)
}

// failure builds a typed stage failure.
func failure(st domain.Stage, reason domain.FailureReason, msg string) *domain.StageFailure {
	return &domain.StageFailure{Stage: st, Reason: reason, Message: msg}
}

// classify maps a collaborator error onto the closed failure reason set.
func classify(err error) domain.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FailureExternalTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FailureExternalTimeout
	}
	return domain.FailureExternalError
}
