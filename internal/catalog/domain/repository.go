package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Category    string
	Pricing     string
	ListingType string
	Search      string
	SortBy      string
	Offset      int
	Limit       int
}

type StatsRow struct {
	TotalTools      int64
	TotalCategories int64
	FreeTools       int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tool *Tool) error
	InsertBatch(ctx context.Context, db *gorm.DB, tools []*Tool) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Tool, error)
	FindActiveByID(ctx context.Context, db *gorm.DB, id int64) (*Tool, error)
	ListActive(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Tool, int64, error)
	ActiveCategories(ctx context.Context, db *gorm.DB) ([]string, error)
	Stats(ctx context.Context, db *gorm.DB) (StatsRow, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	SetActive(ctx context.Context, db *gorm.DB, id int64, active bool, now time.Time) (int64, error)
	DetachOwner(ctx context.Context, db *gorm.DB, ownerID int64, now time.Time) (int64, error)
}
