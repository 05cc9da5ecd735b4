package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/obtain/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*ToolView, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*Stats, error)
	SetActive(ctx context.Context, id string, active bool) (*ToolView, error)
	SeedSamples(ctx context.Context) (int, error)
}

const (
	SortByName     = "name"
	SortByDate     = "date"
	SortByRating   = "rating"
	SortByCategory = "category"
)

type ListRequest struct {
	Category    string `form:"category"`
	Pricing     string `form:"pricing"`
	ListingType string `form:"listing_type"`
	Search      string `form:"search"`
	SortBy      string `form:"sort_by"`
	pagination.Pagination
}

type ListResponse struct {
	Tools      []ToolView          `json:"tools"`
	Pagination pagination.PageInfo `json:"pagination"`
}

// ToolView is the public projection of a Tool. Contact details stay private.
type ToolView struct {
	ID                  string     `json:"id"`
	Slug                string     `json:"slug"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	DetailedDescription *string    `json:"detailed_description"`
	Category            string     `json:"category"`
	Pricing             string     `json:"pricing"`
	WebsiteURL          string     `json:"website_url"`
	LogoURL             *string    `json:"logo_url"`
	ExtraLinks          []string   `json:"extra_links"`
	ListingType         string     `json:"listing_type"`
	Tags                []string   `json:"tags"`
	Features            []string   `json:"features"`
	DateAdded           time.Time  `json:"date_added"`
	Rating              float64    `json:"rating"`
	IsActive            bool       `json:"is_active"`
	IsVerified          bool       `json:"is_verified"`
	VerificationDate    *time.Time `json:"verification_date"`
}

type Stats struct {
	TotalTools      int64 `json:"total_tools"`
	TotalCategories int64 `json:"total_categories"`
	FreeTools       int64 `json:"free_tools"`
}

var (
	ErrNotFound     = errors.New("not_found")
	ErrInvalidID    = errors.New("invalid_id")
	ErrSampleExists = errors.New("sample_data_exists")
)
