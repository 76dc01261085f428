package domain

// LaunchRequest is the body of POST /v1/campaigns and /v1/campaigns/sync.
type LaunchRequest struct {
	Topic          string     `json:"topic"`
	Platforms      []Platform `json:"platforms,omitempty"`
	Tone           string     `json:"tone,omitempty"`
	TargetAudience string     `json:"target_audience,omitempty"`
	AutoPublish    bool       `json:"auto_publish,omitempty"`
}

// Input converts the request into a campaign input.
func (r LaunchRequest) Input() CampaignInput {
	return CampaignInput{
		Topic:          r.Topic,
		Platforms:      r.Platforms,
		Tone:           r.Tone,
		TargetAudience: r.TargetAudience,
		AutoPublish:    r.AutoPublish,
	}
}

// LaunchResponse is returned by the async launch endpoint.
type LaunchResponse struct {
	CampaignID   string `json:"campaign_id"`
	WebSocketURL string `json:"websocket_url"`
	Message      string `json:"message"`
}
