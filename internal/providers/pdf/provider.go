package pdf

import (
	"context"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(NewProvider),
)

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// ReceiptData is everything printed on a payment receipt. Amounts are in
// minor units of Currency.
type ReceiptData struct {
	SiteName     string
	PaymentID    string
	SubmissionID string
	PlanType     string
	Currency     string
	AmountCents  int64
	GatewayID    string
	PaidAt       time.Time
	StartsAt     *time.Time
	EndsAt       *time.Time
}
