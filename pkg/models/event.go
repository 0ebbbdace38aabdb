package models

import (
	"time"
)

// Usage event types published to the message queue
const (
	EventTokensCharged  = "tokens.charged"
	EventUsageCompleted = "usage.completed"
	EventUsageFailed    = "usage.failed"
)

// UsageEvent is emitted when tokens are charged or a usage record reaches a terminal status
type UsageEvent struct {
	Type       string     `json:"type"`
	UserID     string     `json:"user_id"`
	VideoID    string     `json:"video_id"`
	OutputType OutputType `json:"output_type,omitempty"`
	RecordID   string     `json:"record_id,omitempty"`
	Tokens     int        `json:"tokens,omitempty"`
	Error      string     `json:"error,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
