package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *OutboxEntry) error
	ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]OutboxEntry, error)
	// Claim bumps attempts and leases the row. It reports false when another
	// dispatcher claimed it first.
	Claim(ctx context.Context, db *gorm.DB, id int64, seenAttempts int, leaseUntil, now time.Time) (bool, error)
	MarkSent(ctx context.Context, db *gorm.DB, id int64, attempts int, now time.Time) error
	MarkRetry(ctx context.Context, db *gorm.DB, id int64, attempts int, lastError string, nextAttemptAt, now time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id int64, attempts int, lastError string, now time.Time) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*OutboxEntry, error)
}
