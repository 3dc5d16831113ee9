package models

import "time"

// CommandRequest is the payload of one slash-command invocation as received
// from Slack. It is stored verbatim as the intake record's value and handed
// to the dispatcher unchanged.
type CommandRequest struct {
	Command     string `json:"command"`
	Text        string `json:"text"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	TeamID      string `json:"team_id,omitempty"`
	ResponseURL string `json:"response_url"`
}

// CommandRecord is one durably queued command invocation awaiting dispatch.
// It is written exactly once by the intake handler and deleted by the
// dispatcher after processing, whether processing succeeded or not.
type CommandRecord struct {
	Key       string
	Request   CommandRequest
	CreatedAt time.Time
}
