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
	Insert(ctx context.Context, db *gorm.DB, req *Request) error
	FindByIDsForUpdate(ctx context.Context, db *gorm.DB, ids []int64) ([]Request, error)
	Transition(ctx context.Context, db *gorm.DB, id int64, from, to Status, now time.Time) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Request, int64, error)
}
