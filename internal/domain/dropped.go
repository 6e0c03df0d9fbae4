package domain

import "time"

// DroppedCommand is an inbound record that failed processing and was
// acknowledged anyway.
type DroppedCommand struct {
	Stream    string            `json:"stream"`
	RecordID  string            `json:"recordId"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
	Payload   string            `json:"payload"`
	Reason    string            `json:"reason"`
	DroppedAt time.Time         `json:"droppedAt"`
}
