package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/notification/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OutboxParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Outbox struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func NewOutbox(p OutboxParams) domain.Outbox {
	return &Outbox{
		log:   p.Log.Named("notification.outbox"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

// Enqueue writes a pending row using tx, so the message commits or rolls back
// with the caller's state change.
func (o *Outbox) Enqueue(ctx context.Context, tx *gorm.DB, msg domain.Message) error {
	switch msg.Kind {
	case domain.KindSubmissionReceived, domain.KindPaymentRequest:
	default:
		return domain.ErrInvalidKind
	}
	recipient := strings.TrimSpace(msg.Recipient)
	if !validation.IsEmail(recipient) {
		return domain.ErrInvalidRecipient
	}

	now := o.clock.Now()
	entry := &domain.OutboxEntry{
		ID:              o.genID.Generate().Int64(),
		Kind:            msg.Kind,
		Recipient:       recipient,
		DisplayName:     strings.TrimSpace(msg.DisplayName),
		ReferenceNumber: strings.TrimSpace(msg.ReferenceNumber),
		Status:          domain.StatusPending,
		NextAttemptAt:   now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := o.repo.Insert(ctx, tx, entry); err != nil {
		return err
	}

	o.log.Debug("notification queued",
		zap.Int64("outbox_id", entry.ID),
		zap.String("kind", string(entry.Kind)),
		zap.String("reference_number", entry.ReferenceNumber),
	)
	return nil
}
