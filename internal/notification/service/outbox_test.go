package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/notification/domain"
	"github.com/smallbiznis/obtain/internal/notification/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.OutboxEntry{}))
	return db
}

func newTestOutbox(t *testing.T, now time.Time) domain.Outbox {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewOutbox(OutboxParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(now),
	})
}

func TestOutboxEnqueueWritesPendingRow(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	outbox := newTestOutbox(t, now)

	err := outbox.Enqueue(context.Background(), db, domain.Message{
		Kind:            domain.KindSubmissionReceived,
		Recipient:       " jane@example.com ",
		DisplayName:     "Jane",
		ReferenceNumber: "APP-20260301100000-ABCD1234",
	})
	require.NoError(t, err)

	var rows []domain.OutboxEntry
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.StatusPending, rows[0].Status)
	assert.Equal(t, "jane@example.com", rows[0].Recipient)
	assert.Equal(t, 0, rows[0].Attempts)
	assert.True(t, rows[0].NextAttemptAt.Equal(now))
}

func TestOutboxEnqueueRollsBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)
	outbox := newTestOutbox(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := outbox.Enqueue(context.Background(), tx, domain.Message{
			Kind:      domain.KindPaymentRequest,
			Recipient: "owner@example.com",
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.Model(&domain.OutboxEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOutboxEnqueueRejectsInvalidMessages(t *testing.T) {
	db := setupTestDB(t)
	outbox := newTestOutbox(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	err := outbox.Enqueue(context.Background(), db, domain.Message{Kind: "newsletter", Recipient: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)

	err = outbox.Enqueue(context.Background(), db, domain.Message{Kind: domain.KindPaymentRequest, Recipient: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
}

type recordingProvider struct {
	to       []string
	template string
	data     any
}

func (p *recordingProvider) Send(context.Context, []string, string, string) error { return nil }

func (p *recordingProvider) SendTemplate(_ context.Context, to []string, templateName string, data any) error {
	p.to = to
	p.template = templateName
	p.data = data
	return nil
}

func TestEmailSenderUsesKindAsTemplate(t *testing.T) {
	provider := &recordingProvider{}
	sender := NewEmailSender(provider)

	err := sender.Send(context.Background(), domain.Message{
		Kind:            domain.KindPaymentRequest,
		Recipient:       "owner@example.com",
		DisplayName:     "Owner",
		ReferenceNumber: "APP-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"owner@example.com"}, provider.to)
	assert.Equal(t, "payment_request", provider.template)
	assert.Equal(t, templateData{DisplayName: "Owner", ReferenceNumber: "APP-1"}, provider.data)
}
