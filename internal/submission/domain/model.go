package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusReadyToLive Status = "ready_to_live"
	StatusLive        Status = "live"
)

func StatusValues() []string {
	return []string{
		string(StatusPending),
		string(StatusApproved),
		string(StatusRejected),
		string(StatusReadyToLive),
		string(StatusLive),
	}
}

// Submission is a proposed tool awaiting review.
type Submission struct {
	ID                      int64                       `gorm:"primaryKey"`
	ReferenceNumber         string                      `gorm:"type:text;not null;uniqueIndex"`
	ToolName                string                      `gorm:"type:text;not null"`
	ToolWebsite             string                      `gorm:"type:text;not null"`
	ToolCategory            string                      `gorm:"type:text;not null"`
	ToolPricing             string                      `gorm:"type:text;not null"`
	ToolDescription         string                      `gorm:"type:text;not null"`
	ToolDetailedDescription *string                     `gorm:"type:text"`
	ToolFeatures            datatypes.JSONSlice[string] `gorm:"not null"`
	ToolTags                datatypes.JSONSlice[string] `gorm:"not null"`
	ExtraLinks              string                      `gorm:"type:text;not null"`
	ListingType             string                      `gorm:"type:text;not null"`
	ContactName             string                      `gorm:"type:text;not null"`
	ContactEmail            string                      `gorm:"type:text;not null"`
	ContactCompany          *string                     `gorm:"type:text"`
	UserTimezone            *string                     `gorm:"type:text"`
	Status                  Status                      `gorm:"type:text;not null;index"`
	AdminNotes              *string                     `gorm:"type:text"`
	OwnerID                 *int64                      `gorm:"index"`
	SubmissionDate          time.Time                   `gorm:"not null;index"`
	UpdatedAt               time.Time                   `gorm:"not null"`
}

func (Submission) TableName() string { return "tool_submissions" }
