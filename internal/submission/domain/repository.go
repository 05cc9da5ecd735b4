package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/pkg/db/option"
	"gorm.io/gorm"
)

type ListFilter struct {
	Where  []option.QueryOption
	Order  option.QueryOption
	Offset int
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, submission *Submission) error
	// FindByIDsForUpdate row-locks the submissions on dialects that support it.
	FindByIDsForUpdate(ctx context.Context, db *gorm.DB, ids []int64) ([]Submission, error)
	// Transition moves one row from one status to another and reports the rows
	// affected. Zero means the row was no longer in the from status.
	Transition(ctx context.Context, db *gorm.DB, id int64, from, to Status, adminNotes *string, now time.Time) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Submission, int64, error)
	DetachOwner(ctx context.Context, db *gorm.DB, ownerID int64, now time.Time) (int64, error)
}
