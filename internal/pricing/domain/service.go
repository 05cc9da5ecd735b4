package domain

import (
	"context"
	"errors"
)

type Service interface {
	ListPrices(ctx context.Context, currencyCode string, planType PlanType) ([]PriceView, error)
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanView, error)
	CreatePrice(ctx context.Context, req CreatePriceRequest) (*PlanPriceView, error)
	GetPrice(ctx context.Context, id string) (*PriceRow, error)
}

// PriceView is one public price entry. Price is the whole-unit amount,
// truncated rather than rounded.
type PriceView struct {
	Code           string `json:"code"`
	PlanName       string `json:"plan_name"`
	Symbol         string `json:"symbol"`
	Price          int64  `json:"price"`
	FormattedPrice string `json:"formatted_price"`
	PlanDuration   *int   `json:"plan_duration,omitempty"`
}

type CreatePlanRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	DurationDays *int   `json:"duration_days"`
	IsActive     *bool  `json:"is_active"`
}

type PlanView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	DurationDays *int   `json:"duration_days,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type CreatePriceRequest struct {
	PlanID             string `json:"plan_id"`
	Currency           string `json:"currency"`
	PriceCents         int64  `json:"price_cents"`
	DiscountPriceCents *int64 `json:"discount_price_cents"`
	IsActive           *bool  `json:"is_active"`
}

type PlanPriceView struct {
	ID                 string `json:"id"`
	PlanID             string `json:"plan_id"`
	Currency           string `json:"currency"`
	PriceCents         int64  `json:"price_cents"`
	DiscountPriceCents *int64 `json:"discount_price_cents,omitempty"`
	IsActive           bool   `json:"is_active"`
}

var (
	ErrNotFound     = errors.New("plan_price_not_found")
	ErrPlanNotFound = errors.New("plan_not_found")
	ErrInvalidID    = errors.New("invalid_plan_price_id")
	ErrConflict     = errors.New("plan_price_exists")
	ErrPlanConflict = errors.New("plan_exists")
)
