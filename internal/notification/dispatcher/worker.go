package dispatcher

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/notification/domain"
	"github.com/smallbiznis/obtain/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Sender   domain.Sender
	Clock    clock.Clock
	Config   Config                     `optional:"true"`
	Metrics  *metrics.Metrics           `optional:"true"`
	Counters *metrics.DispatcherMetrics `optional:"true"`
}

// Worker delivers queued notifications outside of any workflow transaction.
type Worker struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	sender   domain.Sender
	clock    clock.Clock
	cfg      Config
	metrics  *metrics.Metrics
	counters *metrics.DispatcherMetrics
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:       p.DB,
		log:      p.Log.Named("notification.dispatcher"),
		repo:     p.Repo,
		sender:   p.Sender,
		clock:    p.Clock,
		cfg:      p.Config.withDefaults(),
		metrics:  p.Metrics,
		counters: p.Counters,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("notification dispatch run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce delivers one batch of due messages and returns how many were sent.
func (w *Worker) RunOnce(parentCtx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(parentCtx, w.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	due, err := w.repo.ListDue(ctx, w.db, w.clock.Now(), w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range due {
		ok, err := w.deliver(ctx, entry)
		if err != nil {
			w.log.Warn("notification bookkeeping failed",
				zap.Int64("outbox_id", entry.ID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			sent++
		}
	}

	w.counters.ObserveRun(time.Since(start), len(due))
	return sent, nil
}

func (w *Worker) deliver(ctx context.Context, entry domain.OutboxEntry) (bool, error) {
	now := w.clock.Now()
	claimed, err := w.repo.Claim(ctx, w.db, entry.ID, entry.Attempts, now.Add(w.cfg.SendTimeout*2), now)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}
	attempts := entry.Attempts + 1
	kind := string(entry.Kind)

	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	sendErr := w.sender.Send(sendCtx, entry.Message())
	cancel()

	now = w.clock.Now()
	if sendErr == nil {
		w.metrics.RecordNotification(ctx, kind, "sent")
		w.counters.IncDelivered(kind)
		w.log.Info("notification sent",
			zap.Int64("outbox_id", entry.ID),
			zap.String("kind", kind),
			zap.String("reference_number", entry.ReferenceNumber),
			zap.Int("attempts", attempts),
		)
		return true, w.repo.MarkSent(ctx, w.db, entry.ID, attempts, now)
	}

	w.counters.IncFailure(kind, sendErr)
	if attempts >= w.cfg.MaxAttempts {
		w.metrics.RecordNotification(ctx, kind, "failed")
		w.log.Error("notification gave up",
			zap.Int64("outbox_id", entry.ID),
			zap.String("kind", kind),
			zap.String("reference_number", entry.ReferenceNumber),
			zap.Int("attempts", attempts),
			zap.Error(sendErr),
		)
		return false, w.repo.MarkFailed(ctx, w.db, entry.ID, attempts, sendErr.Error(), now)
	}

	w.metrics.RecordNotification(ctx, kind, "retry")
	next := now.Add(w.cfg.backoff(attempts))
	w.log.Warn("notification send failed, will retry",
		zap.Int64("outbox_id", entry.ID),
		zap.String("kind", kind),
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", next),
		zap.Error(sendErr),
	)
	return false, w.repo.MarkRetry(ctx, w.db, entry.ID, attempts, sendErr.Error(), next, now)
}
