package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/ledger"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Repository is the Postgres ledger
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

var _ ledger.Ledger = (*Repository)(nil)

// Profiles

// GetBalance retrieves a user's token balance
func (r *Repository) GetBalance(ctx context.Context, userID string) (*models.TokenBalance, error) {
	var b models.TokenBalance

	query := `
		SELECT id, tokens_remaining, plan_type, updated_at
		FROM profiles
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&b.UserID, &b.TokensRemaining, &b.PlanType, &b.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &b, nil
}

// DeductTokens decrements the balance only when it covers amount
func (r *Repository) DeductTokens(ctx context.Context, userID string, amount int) (int, error) {
	query := `
		UPDATE profiles
		SET tokens_remaining = tokens_remaining - $2, updated_at = NOW()
		WHERE id = $1 AND tokens_remaining >= $2
		RETURNING tokens_remaining
	`

	var remaining int
	err := r.db.Pool.QueryRow(ctx, query, userID, amount).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to deduct tokens: %w", err)
	}

	// No row updated: either the profile is missing or the balance is short
	b, err := r.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return b.TokensRemaining, ledger.ErrInsufficientTokens
}

// Transactions

// AppendTransaction records a balance change
func (r *Repository) AppendTransaction(ctx context.Context, tx *models.TokenTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	query := `
		INSERT INTO transactions (id, user_id, video_id, tokens_amount, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		tx.ID, tx.UserID, nullString(tx.VideoID), tx.TokensAmount, tx.Type,
	).Scan(&tx.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// Video usage

// HasVideoUsage reports whether the user has any usage record for the video
func (r *Repository) HasVideoUsage(ctx context.Context, userID, videoID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM video_usage WHERE user_id = $1 AND video_id = $2)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, userID, videoID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check video usage: %w", err)
	}

	return exists, nil
}

// CreateVideoUsage inserts a usage record and returns its id
func (r *Repository) CreateVideoUsage(ctx context.Context, rec *models.VideoUsageRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = models.UsageStatusPending
	}

	query := `
		INSERT INTO video_usage (id, user_id, video_id, video_url, title, output_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.VideoID, rec.VideoURL, rec.Title, string(rec.OutputType), rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return "", fmt.Errorf("failed to create video usage: %w", err)
	}

	return rec.ID, nil
}

// UpdateVideoUsageStatus moves a usage record to a new status
func (r *Repository) UpdateVideoUsageStatus(ctx context.Context, id, status string, errorMessage *string) error {
	query := `
		UPDATE video_usage
		SET status = $2, error_message = COALESCE($3, error_message), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to update video usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usage record %s: %w", id, ledger.ErrNotFound)
	}

	return nil
}

// ListVideoUsage retrieves a page of the user's history, newest first
func (r *Repository) ListVideoUsage(ctx context.Context, userID string, filter models.UsageFilter) (*models.UsagePage, error) {
	filter = ledger.NormalizeFilter(filter)

	where := "WHERE user_id = $1"
	args := []interface{}{userID}
	if filter.Status != "" {
		where += " AND status = $2"
		args = append(args, filter.Status)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM video_usage " + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count video usage: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, video_id, video_url, title, output_type, status,
		       error_message, created_at, updated_at
		FROM video_usage
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list video usage: %w", err)
	}
	defer rows.Close()

	items := []*models.VideoUsageRecord{}
	for rows.Next() {
		var rec models.VideoUsageRecord
		var outputType string
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.VideoID, &rec.VideoURL, &rec.Title, &outputType,
			&rec.Status, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video usage: %w", err)
		}
		rec.OutputType = models.OutputType(outputType)
		items = append(items, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list video usage: %w", err)
	}

	return &models.UsagePage{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// VideoUsageStats counts the user's records by status and by output type
func (r *Repository) VideoUsageStats(ctx context.Context, userID string) (*models.UsageStats, error) {
	query := `
		SELECT status, output_type, COUNT(*)
		FROM video_usage
		WHERE user_id = $1
		GROUP BY status, output_type
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video usage stats: %w", err)
	}
	defer rows.Close()

	stats := &models.UsageStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for rows.Next() {
		var status, outputType string
		var count int
		if err := rows.Scan(&status, &outputType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan video usage stats: %w", err)
		}
		stats.ByStatus[status] += count
		stats.ByType[outputType] += count
	}

	return stats, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
