package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal statuses reachable from pending.
func TerminalStatusValues() []string {
	return []string{string(StatusSuccess), string(StatusFailed), string(StatusCancelled)}
}

// Payment is one payment attempt for a submission. Advertisement payments
// cover the half-open window [StartsAt, EndsAt).
type Payment struct {
	ID               int64   `gorm:"primaryKey"`
	SubmissionID     int64   `gorm:"not null;index"`
	ToolID           *int64  `gorm:"index"`
	PlanPriceID      int64   `gorm:"not null"`
	PlanType         string  `gorm:"type:text;not null"`
	CurrencyCode     string  `gorm:"type:char(3);not null"`
	AmountCents      int64   `gorm:"not null"`
	Status           Status  `gorm:"type:text;not null;index"`
	GatewayPaymentID *string `gorm:"type:text"`
	GatewayOrderID   *string `gorm:"type:text"`
	GatewaySignature *string `gorm:"type:text"`
	StartsAt         *time.Time
	EndsAt           *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// ActiveAt reports whether a successful payment covers now.
func (p Payment) ActiveAt(now time.Time) bool {
	if p.Status != StatusSuccess || p.StartsAt == nil || p.EndsAt == nil {
		return false
	}
	return !now.Before(*p.StartsAt) && now.Before(*p.EndsAt)
}
