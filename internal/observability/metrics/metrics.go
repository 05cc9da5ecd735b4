package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	submissions       metric.Int64Counter
	reviewTransitions metric.Int64Counter
	removalRequests   metric.Int64Counter
	notifications     metric.Int64Counter
	payments          metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "obtain"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.submissions, err = meter.Int64Counter("obtain_submissions_total"); err != nil {
		return nil, err
	}
	if m.reviewTransitions, err = meter.Int64Counter("obtain_review_transitions_total"); err != nil {
		return nil, err
	}
	if m.removalRequests, err = meter.Int64Counter("obtain_removal_requests_total"); err != nil {
		return nil, err
	}
	if m.notifications, err = meter.Int64Counter("obtain_notification_deliveries_total"); err != nil {
		return nil, err
	}
	if m.payments, err = meter.Int64Counter("obtain_payment_events_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("obtain_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordSubmission counts accepted tool submissions by listing tier.
func (m *Metrics) RecordSubmission(ctx context.Context, listingType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("listing_type", strings.TrimSpace(listingType)))
	m.submissions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReviewTransition counts rows moved by an admin review action.
func (m *Metrics) RecordReviewTransition(ctx context.Context, entity, action string, affected int64) {
	if m == nil || affected <= 0 {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("action", strings.TrimSpace(action)),
	)
	m.reviewTransitions.Add(ctx, affected, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRemovalRequest(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.removalRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordNotification counts outbox delivery attempts by kind and outcome.
func (m *Metrics) RecordNotification(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.notifications.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentEvent counts payment lifecycle events.
func (m *Metrics) RecordPaymentEvent(ctx context.Context, planType, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("plan_type", strings.TrimSpace(planType)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.payments.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"listing_type": {},
	"entity":       {},
	"action":       {},
	"reason":       {},
	"kind":         {},
	"outcome":      {},
	"plan_type":    {},
	"status":       {},
	"endpoint":     {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
