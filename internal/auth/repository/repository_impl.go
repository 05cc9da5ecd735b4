package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, display_name, password_hash, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	return r.findUser(ctx, db, "id = ?", id)
}

func (r *repo) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return r.findUser(ctx, db, "email = ?", email)
}

func (r *repo) findUser(ctx context.Context, db *gorm.DB, where string, arg any) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, display_name, password_hash, role, is_active, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) DeleteUser(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM users WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) InsertAPIKey(ctx context.Context, db *gorm.DB, key *domain.APIKey) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO api_keys (id, user_id, key_id, name, key_hash, is_active, created_at, last_used_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.ID,
		key.UserID,
		key.KeyID,
		key.Name,
		key.KeyHash,
		key.IsActive,
		key.CreatedAt,
		key.LastUsedAt,
		key.ExpiresAt,
	).Error
}

func (r *repo) FindAPIKeyByHash(ctx context.Context, db *gorm.DB, hash string) (*domain.APIKey, error) {
	var key domain.APIKey
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, key_id, name, key_hash, is_active, created_at, last_used_at, expires_at
		 FROM api_keys WHERE key_hash = ?`,
		hash,
	).Scan(&key).Error
	if err != nil {
		return nil, err
	}
	if key.ID == 0 {
		return nil, nil
	}
	return &key, nil
}

func (r *repo) TouchAPIKey(ctx context.Context, db *gorm.DB, id int64, usedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE api_keys SET last_used_at = ? WHERE id = ?`,
		usedAt,
		id,
	).Error
}

func (r *repo) DeleteUserAPIKeys(ctx context.Context, db *gorm.DB, userID int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM api_keys WHERE user_id = ?`, userID).Error
}
