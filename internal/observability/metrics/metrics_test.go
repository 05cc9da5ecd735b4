package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("listing_type", "featured"),
		attribute.String("contact_email", "jane@example.com"),
		attribute.String("action", "approve"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "contact_email" {
			t.Fatalf("expected contact_email to be dropped")
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordSubmission(context.Background(), "simple")
	m.RecordReviewTransition(context.Background(), "submission", "approve", 2)
	m.RecordNotification(context.Background(), "payment_request", "sent")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordSubmission(context.Background(), "simple")
	m.RecordPaymentEvent(context.Background(), "listing", "success")
}
