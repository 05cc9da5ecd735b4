package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/notification/domain"
	"github.com/smallbiznis/obtain/internal/notification/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []domain.Message
}

func (s *fakeSender) Send(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.OutboxEntry{}))
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, id int64, attempts int, due time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&domain.OutboxEntry{
		ID:              id,
		Kind:            domain.KindSubmissionReceived,
		Recipient:       "jane@example.com",
		DisplayName:     "Jane",
		ReferenceNumber: "APP-20260301100000-ABCD1234",
		Status:          domain.StatusPending,
		Attempts:        attempts,
		NextAttemptAt:   due,
		CreatedAt:       due,
		UpdatedAt:       due,
	}).Error)
}

func newTestWorker(db *gorm.DB, sender domain.Sender, clk clock.Clock, cfg Config) *Worker {
	return NewWorker(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Sender: sender,
		Clock:  clk,
		Config: cfg,
	})
}

func loadEntry(t *testing.T, db *gorm.DB, id int64) domain.OutboxEntry {
	t.Helper()

	entry, err := repository.Provide().FindByID(context.Background(), db, id)
	require.NoError(t, err)
	require.NotNil(t, entry)
	return *entry
}

func TestRunOnceDeliversDueMessages(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedEntry(t, db, 1, 0, now.Add(-time.Minute))
	seedEntry(t, db, 2, 0, now.Add(time.Hour))

	sender := &fakeSender{}
	worker := newTestWorker(db, sender, clock.NewFakeClock(now), Config{})

	sent, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].Recipient)

	delivered := loadEntry(t, db, 1)
	assert.Equal(t, domain.StatusSent, delivered.Status)
	assert.Equal(t, 1, delivered.Attempts)
	require.NotNil(t, delivered.SentAt)

	assert.Equal(t, domain.StatusPending, loadEntry(t, db, 2).Status)
}

func TestRunOnceSchedulesRetryWithBackoff(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedEntry(t, db, 1, 0, now)

	sender := &fakeSender{err: errors.New("smtp unavailable")}
	clk := clock.NewFakeClock(now)
	worker := newTestWorker(db, sender, clk, Config{BaseBackoff: time.Minute, MaxAttempts: 3})

	sent, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	entry := loadEntry(t, db, 1)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.Equal(t, 1, entry.Attempts)
	require.NotNil(t, entry.LastError)
	assert.Equal(t, "smtp unavailable", *entry.LastError)
	assert.True(t, entry.NextAttemptAt.Equal(now.Add(time.Minute)))

	// Not due yet.
	sent, err = worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, loadEntry(t, db, 1).Attempts)
}

func TestRunOnceMarksFailedAtMaxAttempts(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedEntry(t, db, 1, 2, now)

	sender := &fakeSender{err: errors.New("mailbox rejected")}
	worker := newTestWorker(db, sender, clock.NewFakeClock(now), Config{MaxAttempts: 3})

	_, err := worker.RunOnce(context.Background())
	require.NoError(t, err)

	entry := loadEntry(t, db, 1)
	assert.Equal(t, domain.StatusFailed, entry.Status)
	assert.Equal(t, 3, entry.Attempts)
}

func TestRunOnceSkipsEntriesClaimedElsewhere(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedEntry(t, db, 1, 0, now)

	repo := repository.Provide()
	claimed, err := repo.Claim(context.Background(), db, 1, 0, now, now)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.Claim(context.Background(), db, 1, 0, now, now)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestConfigBackoffCapsAtMax(t *testing.T) {
	cfg := Config{BaseBackoff: time.Second, MaxBackoff: 5 * time.Second}.withDefaults()

	assert.Equal(t, time.Second, cfg.backoff(1))
	assert.Equal(t, 2*time.Second, cfg.backoff(2))
	assert.Equal(t, 4*time.Second, cfg.backoff(3))
	assert.Equal(t, 5*time.Second, cfg.backoff(4))
	assert.Equal(t, 5*time.Second, cfg.backoff(10))
}
