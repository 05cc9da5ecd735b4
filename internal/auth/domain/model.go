// Package domain contains core types for admin authentication.
package domain

import "time"

type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleStaff     Role = "staff"
)

func RoleValues() []string {
	return []string{string(RoleSuperuser), string(RoleStaff)}
}

// User is an admin account. Tools and submissions may point at a user as
// their owner; deleting the user detaches them.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	DisplayName  string    `gorm:"type:text;not null"`
	PasswordHash *string   `gorm:"type:text"`
	Role         Role      `gorm:"type:text;not null"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// APIKey stores the hash of a bearer credential issued to a user.
type APIKey struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;index"`
	KeyID      string     `gorm:"column:key_id;type:text;not null;uniqueIndex"`
	Name       string     `gorm:"type:text;not null"`
	KeyHash    string     `gorm:"column:key_hash;type:text;not null;uniqueIndex"`
	IsActive   bool       `gorm:"column:is_active;not null"`
	CreatedAt  time.Time  `gorm:"not null"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// Principal is the authenticated caller behind an admin request.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
	KeyID  string
}
