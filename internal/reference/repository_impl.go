package reference

import (
	"context"
	"database/sql"
	"strings"

	"github.com/smallbiznis/obtain/internal/reference/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	type row struct {
		Code      string         `gorm:"column:code"`
		Name      string         `gorm:"column:name"`
		Symbol    string         `gorm:"column:symbol"`
		Flag      sql.NullString `gorm:"column:flag"`
		MinorUnit int16          `gorm:"column:minor_unit"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT code, name, symbol, flag, minor_unit FROM currencies WHERE is_active = ? ORDER BY code`, true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	currencies := make([]domain.Currency, 0, len(rows))
	for _, item := range rows {
		var flag *string
		if item.Flag.Valid {
			value := item.Flag.String
			flag = &value
		}
		currencies = append(currencies, domain.Currency{
			Code:      item.Code,
			Name:      item.Name,
			Symbol:    item.Symbol,
			Flag:      flag,
			MinorUnit: item.MinorUnit,
			IsActive:  true,
		})
	}

	return currencies, nil
}

func (r *repository) FindCurrency(ctx context.Context, db *gorm.DB, code string) (*domain.Currency, error) {
	if db == nil {
		db = r.db
	}
	var currency domain.Currency
	err := db.WithContext(ctx).
		Raw(`SELECT code, name, symbol, flag, minor_unit, is_active, created_at FROM currencies WHERE code = ?`,
			strings.ToUpper(strings.TrimSpace(code))).
		Scan(&currency).Error
	if err != nil {
		return nil, err
	}
	if currency.Code == "" {
		return nil, nil
	}
	return &currency, nil
}

// UpsertCurrency inserts the currency or refreshes its display fields.
func (r *repository) UpsertCurrency(ctx context.Context, db *gorm.DB, currency *domain.Currency) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "symbol", "flag", "minor_unit", "is_active"}),
	}).Create(currency).Error
}
