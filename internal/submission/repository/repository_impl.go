package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/pkg/db"
	"gorm.io/gorm"
)

const submissionColumns = `id, reference_number, tool_name, tool_website, tool_category, tool_pricing,
	tool_description, tool_detailed_description, tool_features, tool_tags, extra_links, listing_type,
	contact_name, contact_email, contact_company, user_timezone, status, admin_notes, owner_id,
	submission_date, updated_at`

const defaultListOrder = "submission_date DESC, id DESC"

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, submission *domain.Submission) error {
	return tx.WithContext(ctx).Create(submission).Error
}

func (r *repo) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []int64) ([]domain.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Submission
	err := tx.WithContext(ctx).Raw(
		`SELECT `+submissionColumns+` FROM tool_submissions
		 WHERE id IN ?
		 ORDER BY id ASC`+db.ForUpdate(tx),
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Transition(ctx context.Context, tx *gorm.DB, id int64, from, to domain.Status, adminNotes *string, now time.Time) (int64, error) {
	var res *gorm.DB
	if adminNotes != nil {
		res = tx.WithContext(ctx).Exec(
			`UPDATE tool_submissions SET status = ?, admin_notes = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			to,
			*adminNotes,
			now,
			id,
			from,
		)
	} else {
		res = tx.WithContext(ctx).Exec(
			`UPDATE tool_submissions SET status = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			to,
			now,
			id,
			from,
		)
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) List(ctx context.Context, tx *gorm.DB, filter domain.ListFilter) ([]domain.Submission, int64, error) {
	base := func() *gorm.DB {
		stmt := tx.WithContext(ctx).Model(&domain.Submission{})
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
		stmt = stmt.Order(defaultListOrder)
	}

	var items []domain.Submission
	err := stmt.
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) DetachOwner(ctx context.Context, tx *gorm.DB, ownerID int64, now time.Time) (int64, error) {
	res := tx.WithContext(ctx).Exec(
		`UPDATE tool_submissions SET owner_id = NULL, updated_at = ? WHERE owner_id = ?`,
		now,
		ownerID,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
