package repository

import (
	"context"

	"github.com/smallbiznis/obtain/internal/pricing/domain"
	"gorm.io/gorm"
)

const priceRowSelect = `SELECT pp.id, pp.plan_id, p.name AS plan_name, p.type AS plan_type,
	p.duration_days AS plan_duration, p.is_active AS plan_active, pp.currency_code,
	c.symbol, pp.price_cents, pp.discount_price_cents, pp.is_active
	FROM plan_prices pp
	JOIN plans p ON p.id = pp.plan_id
	JOIN currencies c ON c.code = pp.currency_code`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPlan(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindPlan(ctx context.Context, db *gorm.DB, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, type, duration_days, is_active, created_at, updated_at FROM plans WHERE id = ?`,
		id,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) FindPlanByName(ctx context.Context, db *gorm.DB, planType domain.PlanType, name string) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, type, duration_days, is_active, created_at, updated_at FROM plans WHERE type = ? AND name = ?`,
		planType,
		name,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) InsertPrice(ctx context.Context, db *gorm.DB, price *domain.PlanPrice) error {
	return db.WithContext(ctx).Create(price).Error
}

func (r *repo) FindPrice(ctx context.Context, db *gorm.DB, id int64) (*domain.PriceRow, error) {
	var row domain.PriceRow
	err := db.WithContext(ctx).Raw(priceRowSelect+` WHERE pp.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) ListActivePrices(ctx context.Context, db *gorm.DB, currencyCode string, planType domain.PlanType) ([]domain.PriceRow, error) {
	var rows []domain.PriceRow
	err := db.WithContext(ctx).Raw(
		priceRowSelect+`
		WHERE pp.currency_code = ? AND p.type = ? AND pp.is_active = ? AND p.is_active = ?
		ORDER BY pp.price_cents ASC, p.name ASC`,
		currencyCode,
		planType,
		true,
		true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
