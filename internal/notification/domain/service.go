package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Outbox queues messages inside the caller's transaction.
type Outbox interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg Message) error
}

// Sender delivers one message. Errors are reported to the dispatcher and
// never reach the workflow that queued the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrInvalidKind      = errors.New("invalid_kind")
)
