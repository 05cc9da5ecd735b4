package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Pricing string

const (
	PricingFree       Pricing = "free"
	PricingPaid       Pricing = "paid"
	PricingFreemium   Pricing = "freemium"
	PricingOpenSource Pricing = "open_source"
)

func PricingValues() []string {
	return []string{string(PricingFree), string(PricingPaid), string(PricingFreemium), string(PricingOpenSource)}
}

// IsFree reports whether the tool counts towards the free-tools stat.
func (p Pricing) IsFree() bool {
	return p == PricingFree || p == PricingOpenSource
}

type ListingType string

const (
	ListingSimple   ListingType = "simple"
	ListingVerified ListingType = "verified"
	ListingFeatured ListingType = "featured"
	ListingPremium  ListingType = "premium"
)

func ListingTypeValues() []string {
	return []string{string(ListingSimple), string(ListingVerified), string(ListingFeatured), string(ListingPremium)}
}

// Verifies reports whether approval under this tier marks the tool verified.
// Every paid tier above simple verifies.
func (l ListingType) Verifies() bool {
	switch l {
	case ListingVerified, ListingFeatured, ListingPremium:
		return true
	default:
		return false
	}
}

// Tool is a public catalog entry. Tools are only ever created, never
// rewritten from a submission.
type Tool struct {
	ID                  int64                       `gorm:"primaryKey"`
	Slug                string                      `gorm:"type:text;not null;index"`
	Name                string                      `gorm:"type:text;not null"`
	Description         string                      `gorm:"type:text;not null"`
	DetailedDescription *string                     `gorm:"type:text"`
	Category            string                      `gorm:"type:text;not null;index"`
	Pricing             Pricing                     `gorm:"type:text;not null"`
	WebsiteURL          string                      `gorm:"column:website_url;type:text;not null"`
	LogoURL             *string                     `gorm:"column:logo_url;type:text"`
	ExtraLinks          string                      `gorm:"type:text;not null"`
	ListingType         ListingType                 `gorm:"type:text;not null"`
	Tags                datatypes.JSONSlice[string] `gorm:"not null"`
	Features            datatypes.JSONSlice[string] `gorm:"not null"`
	Rating              float64                     `gorm:"not null"`
	IsActive            bool                        `gorm:"not null;index"`
	IsVerified          bool                        `gorm:"not null"`
	VerificationDate    *time.Time
	ContactName         *string   `gorm:"type:text"`
	ContactEmail        *string   `gorm:"type:text"`
	ContactCompany      *string   `gorm:"type:text"`
	UserTimezone        *string   `gorm:"type:text"`
	OwnerID             *int64    `gorm:"index"`
	DateAdded           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

func (Tool) TableName() string { return "tools" }
