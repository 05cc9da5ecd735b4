package domain

import "time"

// Currency is a display currency for plan prices.
type Currency struct {
	Code      string    `json:"code" gorm:"type:char(3);primaryKey;column:code"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Symbol    string    `json:"symbol" gorm:"type:text;not null"`
	Flag      *string   `json:"flag,omitempty" gorm:"type:text"`
	MinorUnit int16     `json:"minor_unit" gorm:"type:smallint;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (Currency) TableName() string { return "currencies" }
