package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

func StatusValues() []string {
	return []string{string(StatusPending), string(StatusVerified), string(StatusCompleted), string(StatusRejected)}
}

var VerificationMethods = []string{"email", "domain", "documentation", "other"}

var RemovalReasons = []string{"discontinued", "rebranding", "privacy", "inaccurate", "other"}

// Request asks for a listed tool to be taken down by its owner.
type Request struct {
	ID                 int64     `gorm:"primaryKey"`
	ToolName           string    `gorm:"type:text;not null"`
	ToolWebsite        string    `gorm:"type:text;not null"`
	ToolReference      *string   `gorm:"column:tool_reference;type:text"`
	OwnerName          string    `gorm:"type:text;not null"`
	OwnerEmail         string    `gorm:"type:text;not null"`
	OwnerCompany       *string   `gorm:"type:text"`
	VerificationMethod string    `gorm:"type:text;not null"`
	RemovalReason      string    `gorm:"type:text;not null"`
	AdditionalDetails  *string   `gorm:"type:text"`
	Status             Status    `gorm:"type:text;not null;index"`
	AdminNotes         *string   `gorm:"type:text"`
	RequestDate        time.Time `gorm:"not null;index"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (Request) TableName() string { return "tool_removal_requests" }
