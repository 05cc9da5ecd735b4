package domain

import "time"

type Kind string

const (
	KindSubmissionReceived Kind = "submission_received"
	KindPaymentRequest     Kind = "payment_request"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is one email to deliver to a submitter.
type Message struct {
	Kind            Kind
	Recipient       string
	DisplayName     string
	ReferenceNumber string
}

// OutboxEntry is a queued Message. Rows are written in the same transaction
// as the state change that caused them and delivered later.
type OutboxEntry struct {
	ID              int64  `gorm:"primaryKey"`
	Kind            Kind   `gorm:"type:text;not null"`
	Recipient       string `gorm:"type:text;not null"`
	DisplayName     string `gorm:"type:text;not null"`
	ReferenceNumber string `gorm:"type:text;not null"`
	Status          Status `gorm:"type:text;not null;index:idx_notification_outbox_due,priority:1"`
	Attempts        int    `gorm:"not null"`
	LastError       *string
	NextAttemptAt   time.Time `gorm:"not null;index:idx_notification_outbox_due,priority:2"`
	SentAt          *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (OutboxEntry) TableName() string { return "notification_outbox" }

func (e OutboxEntry) Message() Message {
	return Message{
		Kind:            e.Kind,
		Recipient:       e.Recipient,
		DisplayName:     e.DisplayName,
		ReferenceNumber: e.ReferenceNumber,
	}
}
