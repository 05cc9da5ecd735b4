package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const dateLayout = "2006-01-02"

type MarotoProvider struct{}

func NewProvider() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.PaymentID) == "" {
		return nil, fmt.Errorf("pdf: receipt requires a payment id")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, siteName(data.SiteName), props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Receipt", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Payment: "+data.PaymentID, props.Text{Top: 0}),
			text.New("Submission: "+fallback(data.SubmissionID), props.Text{Top: 4}),
			text.New("Gateway reference: "+fallback(data.GatewayID), props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Date paid: "+data.PaidAt.UTC().Format(dateLayout), props.Text{Align: align.Right}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, FormatAmount(data.Currency, data.AmountCents)+" paid on "+data.PaidAt.UTC().Format(dateLayout), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Period", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(15,
		text.NewCol(6, describePlan(data.PlanType), props.Text{Size: 9}),
		text.NewCol(4, period(data), props.Text{Size: 9}),
		text.NewCol(2, FormatAmount(data.Currency, data.AmountCents), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, FormatAmount(data.Currency, data.AmountCents), props.Text{Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// FormatAmount renders minor units as "<CODE> <major>.<minor>".
func FormatAmount(currency string, cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", strings.ToUpper(strings.TrimSpace(currency)), sign, cents/100, cents%100)
}

func describePlan(planType string) string {
	switch planType {
	case "listing":
		return "Listing plan"
	case "advertisement":
		return "Advertisement plan"
	default:
		return fallback(planType)
	}
}

func period(data ReceiptData) string {
	if data.StartsAt == nil || data.EndsAt == nil {
		return "-"
	}
	return data.StartsAt.UTC().Format(dateLayout) + " to " + data.EndsAt.UTC().Format(dateLayout)
}

func siteName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Obtain.AI"
	}
	return name
}

func fallback(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
