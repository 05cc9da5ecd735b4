package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertPlan(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindPlan(ctx context.Context, db *gorm.DB, id int64) (*Plan, error)
	FindPlanByName(ctx context.Context, db *gorm.DB, planType PlanType, name string) (*Plan, error)
	InsertPrice(ctx context.Context, db *gorm.DB, price *PlanPrice) error
	FindPrice(ctx context.Context, db *gorm.DB, id int64) (*PriceRow, error)
	ListActivePrices(ctx context.Context, db *gorm.DB, currencyCode string, planType PlanType) ([]PriceRow, error)
}
