package metrics

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDispatchReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: DispatcherReasonDeadlineExceeded},
		{name: "network", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: DispatcherReasonNetwork},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: DispatcherReasonDBLockTimeout},
		{name: "db", err: &pgconn.PgError{Code: "23505"}, want: DispatcherReasonDB},
		{name: "unknown", err: errors.New("boom"), want: DispatcherReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyDispatchReason(tc.err))
		})
	}
}

func TestDispatcherMetricsCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newDispatcherMetrics(registry, Config{ServiceName: "obtain-test", Environment: "test"})

	m.IncDelivered("payment_request")
	m.IncDelivered("payment_request")
	m.IncFailure("submission_received", context.DeadlineExceeded)
	m.ObserveRun(50*time.Millisecond, 3)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.delivered.WithLabelValues("payment_request")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("submission_received", DispatcherReasonDeadlineExceeded)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.backlog))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runs))
}
