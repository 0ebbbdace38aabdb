package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Memory is an in-process Ledger for development and tests
type Memory struct {
	mu           sync.RWMutex
	balances     map[string]*models.TokenBalance
	transactions []*models.TokenTransaction
	usage        []*models.VideoUsageRecord
	now          func() time.Time
	// defaultBalance provisions unknown users when positive
	defaultBalance int
}

// NewMemory creates an empty in-process ledger
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]*models.TokenBalance),
		now:      time.Now,
	}
}

// SetBalance creates or overwrites a user's profile
func (m *Memory) SetBalance(userID string, tokens int, planType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[userID] = &models.TokenBalance{
		UserID:          userID,
		TokensRemaining: tokens,
		PlanType:        planType,
		UpdatedAt:       m.now(),
	}
}

// SetDefaultBalance provisions a free profile holding tokens for any user
// seen for the first time. Zero disables provisioning.
func (m *Memory) SetDefaultBalance(tokens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultBalance = tokens
}

// profile returns the user's balance, provisioning it when enabled.
// Callers hold the write lock.
func (m *Memory) profile(userID string) (*models.TokenBalance, bool) {
	if b, ok := m.balances[userID]; ok {
		return b, true
	}
	if m.defaultBalance <= 0 {
		return nil, false
	}
	b := &models.TokenBalance{
		UserID:          userID,
		TokensRemaining: m.defaultBalance,
		PlanType:        "free",
		UpdatedAt:       m.now(),
	}
	m.balances[userID] = b
	return b, true
}

// Transactions returns a copy of the user's transactions, oldest first
func (m *Memory) Transactions(userID string) []*models.TokenTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.TokenTransaction
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			c := *tx
			out = append(out, &c)
		}
	}
	return out
}

func (m *Memory) GetBalance(_ context.Context, userID string) (*models.TokenBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.profile(userID)
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (m *Memory) DeductTokens(_ context.Context, userID string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.profile(userID)
	if !ok {
		return 0, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if b.TokensRemaining < amount {
		return b.TokensRemaining, ErrInsufficientTokens
	}

	b.TokensRemaining -= amount
	b.UpdatedAt = m.now()
	return b.TokensRemaining, nil
}

func (m *Memory) AppendTransaction(_ context.Context, tx *models.TokenTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *tx
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}
	m.transactions = append(m.transactions, &c)
	return nil
}

func (m *Memory) HasVideoUsage(_ context.Context, userID, videoID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.usage {
		if rec.UserID == userID && rec.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CreateVideoUsage(_ context.Context, rec *models.VideoUsageRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *rec
	c.ID = uuid.New().String()
	if c.Status == "" {
		c.Status = models.UsageStatusPending
	}
	now := m.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.usage = append(m.usage, &c)
	return c.ID, nil
}

func (m *Memory) UpdateVideoUsageStatus(_ context.Context, id, status string, errorMessage *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.usage {
		if rec.ID == id {
			rec.Status = status
			if errorMessage != nil {
				msg := *errorMessage
				rec.ErrorMessage = &msg
			}
			rec.UpdatedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("usage record %s: %w", id, ErrNotFound)
}

func (m *Memory) ListVideoUsage(_ context.Context, userID string, filter models.UsageFilter) (*models.UsagePage, error) {
	filter = NormalizeFilter(filter)

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first: records are appended in creation order
	var matched []*models.VideoUsageRecord
	for i := len(m.usage) - 1; i >= 0; i-- {
		rec := m.usage[i]
		if rec.UserID != userID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	page := &models.UsagePage{
		Items:  []*models.VideoUsageRecord{},
		Total:  len(matched),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i := filter.Offset; i < len(matched) && i < filter.Offset+filter.Limit; i++ {
		c := *matched[i]
		page.Items = append(page.Items, &c)
	}
	return page, nil
}

func (m *Memory) VideoUsageStats(_ context.Context, userID string) (*models.UsageStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.UsageStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for _, rec := range m.usage {
		if rec.UserID != userID {
			continue
		}
		stats.ByStatus[rec.Status]++
		stats.ByType[string(rec.OutputType)]++
	}
	return stats, nil
}

var _ Ledger = (*Memory)(nil)
