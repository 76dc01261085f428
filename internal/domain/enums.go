// Package domain defines the core domain models for the campaign engine.
package domain

// CampaignStatus represents the status of a campaign.
type CampaignStatus string

const (
	CampaignStatusPending     CampaignStatus = "PENDING"
	CampaignStatusResearching CampaignStatus = "RESEARCHING"
	CampaignStatusWriting     CampaignStatus = "WRITING"
	CampaignStatusPublishing  CampaignStatus = "PUBLISHING"
	CampaignStatusCompleted   CampaignStatus = "COMPLETED"
	CampaignStatusFailed      CampaignStatus = "FAILED"
)

// IsTerminal reports whether the status is a terminal state.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusFailed
}

// Stage identifies one step of the pipeline.
type Stage string

const (
	StageResearch Stage = "research"
	StageWrite    Stage = "write"
	StagePublish  Stage = "publish"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageResearch, StageWrite, StagePublish}

// RunningStatus returns the campaign status while the stage executes.
func (st Stage) RunningStatus() CampaignStatus {
	switch st {
	case StageResearch:
		return CampaignStatusResearching
	case StageWrite:
		return CampaignStatusWriting
	case StagePublish:
		return CampaignStatusPublishing
	}
	return CampaignStatusPending
}

// EventKind represents the kind of a stage event.
type EventKind string

const (
	EventKindStarted   EventKind = "started"
	EventKindSucceeded EventKind = "succeeded"
	EventKindFailed    EventKind = "failed"
)

// FailureReason is the closed set of stage failure reasons.
type FailureReason string

const (
	FailureExternalTimeout FailureReason = "ExternalTimeout"
	FailureExternalError   FailureReason = "ExternalError"
	FailureInvalidInput    FailureReason = "InvalidInput"
)

// Platform identifies a publishing target.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
)

// KnownPlatform reports whether p is a supported platform.
func KnownPlatform(p Platform) bool {
	return p == PlatformLinkedIn
}
