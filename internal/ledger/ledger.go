// Package ledger defines the persistence contract for token balances,
// token transactions and video usage records.
package ledger

import (
	"context"
	"errors"

	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

var (
	// ErrInsufficientTokens is returned when a balance cannot cover a charge
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrNotFound is returned when a profile or usage record does not exist
	ErrNotFound = errors.New("not found")
)

// Default history page size
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Ledger stores balances, transactions and usage records
type Ledger interface {
	// GetBalance returns the user's current balance
	GetBalance(ctx context.Context, userID string) (*models.TokenBalance, error)
	// DeductTokens decrements the balance by amount and returns the new
	// balance. It never drives the balance below zero.
	DeductTokens(ctx context.Context, userID string, amount int) (int, error)
	AppendTransaction(ctx context.Context, tx *models.TokenTransaction) error

	// HasVideoUsage reports whether any usage record exists for the pair
	HasVideoUsage(ctx context.Context, userID, videoID string) (bool, error)
	CreateVideoUsage(ctx context.Context, rec *models.VideoUsageRecord) (string, error)
	UpdateVideoUsageStatus(ctx context.Context, id, status string, errorMessage *string) error
	ListVideoUsage(ctx context.Context, userID string, filter models.UsageFilter) (*models.UsagePage, error)
	VideoUsageStats(ctx context.Context, userID string) (*models.UsageStats, error)
}

// NormalizeFilter applies paging defaults
func NormalizeFilter(f models.UsageFilter) models.UsageFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
