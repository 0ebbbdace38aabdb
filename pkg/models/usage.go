package models

import (
	"time"
)

// OutputType is the artifact a request produced for a video
type OutputType string

const (
	OutputTypeTranscript OutputType = "transcript"
	OutputTypeSmartNotes OutputType = "smart_notes"
	OutputTypeMindmap    OutputType = "mindmap"
	OutputTypeFlashcards OutputType = "flashcards"
)

// Valid reports whether t is a known output type
func (t OutputType) Valid() bool {
	switch t {
	case OutputTypeTranscript, OutputTypeSmartNotes, OutputTypeMindmap, OutputTypeFlashcards:
		return true
	}
	return false
}

// UsageStatus constants
const (
	UsageStatusPending    = "pending"
	UsageStatusProcessing = "processing"
	UsageStatusCompleted  = "completed"
	UsageStatusFailed     = "failed"
)

// IsTerminalUsageStatus reports whether status ends a usage record's lifecycle
func IsTerminalUsageStatus(status string) bool {
	return status == UsageStatusCompleted || status == UsageStatusFailed
}

// TransactionType constants
const (
	TransactionTypeConsumption = "consumption"
	TransactionTypeRefund      = "refund"
	TransactionTypeGrant       = "grant"
)

// TokenBalance is a user's remaining token credit
type TokenBalance struct {
	UserID          string    `json:"user_id" db:"id"`
	TokensRemaining int       `json:"tokens_remaining" db:"tokens_remaining"`
	PlanType        string    `json:"plan_type" db:"plan_type"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TokenTransaction is an append-only record of a balance change
type TokenTransaction struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	VideoID      string    `json:"video_id,omitempty" db:"video_id"`
	TokensAmount int       `json:"tokens_amount" db:"tokens_amount"`
	Type         string    `json:"type" db:"type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// VideoUsageRecord tracks one output request for a video
type VideoUsageRecord struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	VideoID      string     `json:"video_id" db:"video_id"`
	VideoURL     string     `json:"video_url" db:"video_url"`
	Title        string     `json:"title,omitempty" db:"title"`
	OutputType   OutputType `json:"output_type" db:"output_type"`
	Status       string     `json:"status" db:"status"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// UsageFilter narrows a history listing
type UsageFilter struct {
	Status string
	Limit  int
	Offset int
}

// UsagePage is one page of a user's history
type UsagePage struct {
	Items  []*VideoUsageRecord `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// UsageStats aggregates a user's usage records
type UsageStats struct {
	ByStatus map[string]int `json:"byStatus"`
	ByType   map[string]int `json:"byType"`
}
