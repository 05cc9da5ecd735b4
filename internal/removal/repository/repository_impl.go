package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/internal/removal/domain"
	"github.com/smallbiznis/obtain/pkg/db"
	"gorm.io/gorm"
)

const requestColumns = `id, tool_name, tool_website, tool_reference, owner_name, owner_email, owner_company,
	verification_method, removal_reason, additional_details, status, admin_notes, request_date, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, req *domain.Request) error {
	return tx.WithContext(ctx).Create(req).Error
}

func (r *repo) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []int64) ([]domain.Request, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Request
	err := tx.WithContext(ctx).Raw(
		`SELECT `+requestColumns+` FROM tool_removal_requests
		 WHERE id IN ?
		 ORDER BY id ASC`+db.ForUpdate(tx),
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Transition(ctx context.Context, tx *gorm.DB, id int64, from, to domain.Status, now time.Time) (int64, error) {
	res := tx.WithContext(ctx).Exec(
		`UPDATE tool_removal_requests SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		to,
		now,
		id,
		from,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) List(ctx context.Context, tx *gorm.DB, filter domain.ListFilter) ([]domain.Request, int64, error) {
	base := func() *gorm.DB {
		stmt := tx.WithContext(ctx).Model(&domain.Request{})
		for _, opt := range filter.Where {
			stmt = opt.Apply(stmt)
		}
		return stmt
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt := base()
	if filter.Order != nil {
		stmt = filter.Order.Apply(stmt)
	} else {
		stmt = stmt.Order("request_date DESC, id DESC")
	}

	var items []domain.Request
	err := stmt.
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
