package domain

import "time"

type PlanType string

const (
	PlanTypeListing       PlanType = "listing"
	PlanTypeAdvertisement PlanType = "advertisement"
)

func PlanTypeValues() []string {
	return []string{string(PlanTypeListing), string(PlanTypeAdvertisement)}
}

// Plan is a purchasable listing tier or advertisement package. Only
// advertisement plans carry a duration.
type Plan struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"type:text;not null;uniqueIndex:ux_plans_type_name,priority:2"`
	Type         PlanType  `gorm:"type:text;not null;uniqueIndex:ux_plans_type_name,priority:1"`
	DurationDays *int      `gorm:"column:duration_days"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (Plan) TableName() string { return "plans" }

// PlanPrice is the price of a plan in one currency. Amounts are minor units.
type PlanPrice struct {
	ID                 int64  `gorm:"primaryKey"`
	PlanID             int64  `gorm:"not null;uniqueIndex:ux_plan_prices_plan_currency,priority:1"`
	CurrencyCode       string `gorm:"type:char(3);not null;uniqueIndex:ux_plan_prices_plan_currency,priority:2"`
	PriceCents         int64  `gorm:"not null"`
	DiscountPriceCents *int64
	IsActive           bool      `gorm:"not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (PlanPrice) TableName() string { return "plan_prices" }

// PriceRow is a plan price joined with its plan and currency.
type PriceRow struct {
	ID                 int64
	PlanID             int64
	PlanName           string
	PlanType           PlanType
	PlanDuration       *int
	PlanActive         bool
	CurrencyCode       string
	Symbol             string
	PriceCents         int64
	DiscountPriceCents *int64
	IsActive           bool
}

// EffectiveCents is what a buyer pays: the discount price when one is set.
func (p PriceRow) EffectiveCents() int64 {
	if p.DiscountPriceCents != nil {
		return *p.DiscountPriceCents
	}
	return p.PriceCents
}
