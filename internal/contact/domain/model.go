package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
)

// Message is a contact form entry.
type Message struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Email       string    `gorm:"type:text;not null"`
	Country     *string   `gorm:"type:text"`
	Description string    `gorm:"column:description;type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (Message) TableName() string { return "contact_messages" }

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
	Desc    string `json:"desc"`
}

type SubmitResult struct {
	SubmissionID string `json:"submission_id"`
}

// ListRequest orders by the entity's declared ordering unless SortBy names
// an explicitly sortable column.
type ListRequest struct {
	SortBy  string `form:"sort_by"`
	OrderBy string `form:"order_by"`
	option.ListQuery
	pagination.Pagination
}

type ListResponse struct {
	Contacts   []MessageView       `json:"contacts"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type MessageView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Country   *string   `json:"country"`
	Desc      string    `json:"desc"`
	CreatedAt time.Time `json:"contact_date"`
}

var ErrNotFound = errors.New("contact_not_found")
