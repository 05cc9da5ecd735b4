package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceipt(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	doc, err := NewProvider().GenerateReceipt(context.Background(), ReceiptData{
		SiteName:    "Obtain.AI Admin",
		PaymentID:   "42",
		PlanType:    "advertisement",
		Currency:    "usd",
		AmountCents: 9900,
		PaidAt:      start,
		StartsAt:    &start,
		EndsAt:      &end,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestGenerateReceiptRequiresPaymentID(t *testing.T) {
	_, err := NewProvider().GenerateReceipt(context.Background(), ReceiptData{})
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "USD 99.00", FormatAmount("usd", 9900))
	assert.Equal(t, "INR 0.05", FormatAmount("INR", 5))
	assert.Equal(t, "EUR -1.50", FormatAmount("EUR", -150))
}
