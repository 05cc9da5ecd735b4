package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListCurrencies(ctx context.Context) ([]Currency, error)
	FindCurrency(ctx context.Context, db *gorm.DB, code string) (*Currency, error)
	UpsertCurrency(ctx context.Context, db *gorm.DB, currency *Currency) error
}
