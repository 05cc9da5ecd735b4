package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type GatewayRefs struct {
	PaymentID *string
	OrderID   *string
	Signature *string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Payment, error)
	// Transition moves a pending payment to status. Zero rows means the payment
	// was missing or already terminal.
	Transition(ctx context.Context, db *gorm.DB, id int64, status Status, refs GatewayRefs, now time.Time) (int64, error)
	ListSuccessfulAdvertisements(ctx context.Context, db *gorm.DB, toolID int64) ([]Payment, error)
	SubmissionExists(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	ToolExists(ctx context.Context, db *gorm.DB, id int64) (bool, error)
}
