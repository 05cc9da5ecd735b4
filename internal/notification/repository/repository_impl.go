package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/internal/notification/domain"
	"gorm.io/gorm"
)

const outboxColumns = `id, kind, recipient, display_name, reference_number, status, attempts,
	last_error, next_attempt_at, sent_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.OutboxEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notification_outbox (id, kind, recipient, display_name, reference_number, status, attempts,
			next_attempt_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Kind,
		entry.Recipient,
		entry.DisplayName,
		entry.ReferenceNumber,
		entry.Status,
		entry.Attempts,
		entry.NextAttemptAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.OutboxEntry, error) {
	var items []domain.OutboxEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+outboxColumns+` FROM notification_outbox
		 WHERE status = ? AND next_attempt_at <= ?
		 ORDER BY next_attempt_at ASC, id ASC
		 LIMIT ?`,
		domain.StatusPending,
		now,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Claim(ctx context.Context, db *gorm.DB, id int64, seenAttempts int, leaseUntil, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET attempts = ?, next_attempt_at = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND attempts = ?`,
		seenAttempts+1,
		leaseUntil,
		now,
		id,
		domain.StatusPending,
		seenAttempts,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id int64, attempts int, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET status = ?, attempts = ?, last_error = NULL, sent_at = ?, updated_at = ?
		 WHERE id = ?`,
		domain.StatusSent,
		attempts,
		now,
		now,
		id,
	).Error
}

func (r *repo) MarkRetry(ctx context.Context, db *gorm.DB, id int64, attempts int, lastError string, nextAttemptAt, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET attempts = ?, last_error = ?, next_attempt_at = ?, updated_at = ?
		 WHERE id = ?`,
		attempts,
		lastError,
		nextAttemptAt,
		now,
		id,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id int64, attempts int, lastError string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET status = ?, attempts = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		domain.StatusFailed,
		attempts,
		lastError,
		now,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.OutboxEntry, error) {
	var entry domain.OutboxEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+outboxColumns+` FROM notification_outbox WHERE id = ?`,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}
