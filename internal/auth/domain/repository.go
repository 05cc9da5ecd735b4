package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUser(ctx context.Context, db *gorm.DB, id int64) (*User, error)
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	DeleteUser(ctx context.Context, db *gorm.DB, id int64) (int64, error)

	InsertAPIKey(ctx context.Context, db *gorm.DB, key *APIKey) error
	FindAPIKeyByHash(ctx context.Context, db *gorm.DB, hash string) (*APIKey, error)
	TouchAPIKey(ctx context.Context, db *gorm.DB, id int64, usedAt time.Time) error
	DeleteUserAPIKeys(ctx context.Context, db *gorm.DB, userID int64) error
}
