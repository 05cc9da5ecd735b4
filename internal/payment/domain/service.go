package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Record(ctx context.Context, req RecordRequest) (*PaymentView, error)
	Transition(ctx context.Context, id string, req TransitionRequest) (*PaymentView, error)
	ActiveAdvertisement(ctx context.Context, toolID string) (*AdvertisementStatus, error)
	Get(ctx context.Context, id string) (*PaymentView, error)
}

type RecordRequest struct {
	SubmissionID   string     `json:"submission_id"`
	ToolID         string     `json:"tool_id"`
	PlanPriceID    string     `json:"plan_price_id"`
	GatewayOrderID string     `json:"gateway_order_id"`
	StartsAt       *time.Time `json:"starts_at"`
}

type TransitionRequest struct {
	Status           string `json:"status"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewaySignature string `json:"gateway_signature"`
}

type PaymentView struct {
	ID               string     `json:"id"`
	SubmissionID     string     `json:"submission_id"`
	ToolID           *string    `json:"tool_id"`
	PlanPriceID      string     `json:"plan_price_id"`
	PlanType         string     `json:"plan_type"`
	Currency         string     `json:"currency"`
	AmountCents      int64      `json:"amount_cents"`
	Status           string     `json:"status"`
	GatewayPaymentID *string    `json:"gateway_payment_id"`
	GatewayOrderID   *string    `json:"gateway_order_id"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type AdvertisementStatus struct {
	Active  bool         `json:"active"`
	Payment *PaymentView `json:"payment,omitempty"`
}

var (
	ErrNotFound           = errors.New("payment_not_found")
	ErrInvalidID          = errors.New("invalid_payment_id")
	ErrSubmissionNotFound = errors.New("submission_not_found")
	ErrToolNotFound       = errors.New("tool_not_found")
	ErrPriceInactive      = errors.New("plan_price_inactive")
	ErrInvalidTransition  = errors.New("payment_already_final")
	ErrNotSettled         = errors.New("payment_not_successful")
)
