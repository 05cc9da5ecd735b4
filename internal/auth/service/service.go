package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/auth/password"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/clock"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiKeyPrefix      = "ob_live_key_"
	apiKeySecretBytes = 32
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Tools       catalogdomain.Repository
	Submissions submissiondomain.Repository
	Clock       clock.Clock
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	tools       catalogdomain.Repository
	submissions submissiondomain.Repository
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		tools:       p.Tools,
		submissions: p.Submissions,
		clock:       p.Clock,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserView, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = string(domain.RoleStaff)
	}

	v := &validation.Errors{}
	if v.Required("email", email) {
		v.Email("email", email)
	}
	v.OneOf("role", role, domain.RoleValues()...)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:          s.genID.Generate().Int64(),
		Email:       email,
		DisplayName: displayName,
		Role:        domain.Role(role),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Password != "" {
		hash, err := password.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindUserByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrUserExists
		}
		if err := s.repo.InsertUser(ctx, tx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrUserExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return toUserView(user), nil
}

// IssueAPIKey creates a new bearer credential. The plain key is returned once
// and only its hash is stored.
func (s *Service) IssueAPIKey(ctx context.Context, userID string, name string) (*domain.SecretResponse, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidKeyName
	}

	user, err := s.repo.FindUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	keyPK := s.genID.Generate()
	keyID := newKeyID(keyPK)
	plain, hash, err := generateAPIKey(keyID)
	if err != nil {
		return nil, err
	}

	key := &domain.APIKey{
		ID:        keyPK.Int64(),
		UserID:    user.ID,
		KeyID:     keyID,
		Name:      name,
		KeyHash:   hash,
		IsActive:  true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertAPIKey(ctx, s.db, key); err != nil {
		return nil, err
	}

	s.log.Info("api key issued", zap.Int64("user_id", user.ID), zap.String("key_id", keyID))
	return &domain.SecretResponse{KeyID: keyID, APIKey: plain}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawKey string) (*domain.Principal, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, domain.ErrUnauthorized
	}

	key, err := s.repo.FindAPIKeyByHash(ctx, s.db, domain.HashAPIKey(rawKey))
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if key == nil || !key.IsActive || isExpired(key.ExpiresAt, now) {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindUser(ctx, s.db, key.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}

	if err := s.repo.TouchAPIKey(ctx, s.db, key.ID, now); err != nil {
		s.log.Warn("failed to update api key last use", zap.String("key_id", key.KeyID), zap.Error(err))
	}

	return &domain.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		KeyID:  key.KeyID,
	}, nil
}

// DeleteUser removes the account and detaches every tool and submission it
// owned in the same transaction.
func (s *Service) DeleteUser(ctx context.Context, userID string) (*domain.DeleteResult, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	result := &domain.DeleteResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		if result.DetachedTools, err = s.tools.DetachOwner(ctx, tx, id, now); err != nil {
			return fmt.Errorf("detach tools: %w", err)
		}
		if result.DetachedSubmissions, err = s.submissions.DetachOwner(ctx, tx, id, now); err != nil {
			return fmt.Errorf("detach submissions: %w", err)
		}
		if err := s.repo.DeleteUserAPIKeys(ctx, tx, id); err != nil {
			return err
		}
		_, err = s.repo.DeleteUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user deleted",
		zap.Int64("user_id", id),
		zap.Int64("detached_tools", result.DetachedTools),
		zap.Int64("detached_submissions", result.DetachedSubmissions),
	)
	return result, nil
}

func toUserView(user *domain.User) *domain.UserView {
	return &domain.UserView{
		ID:          strconv.FormatInt(user.ID, 10),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	}
}

func generateAPIKey(keyID string) (string, string, error) {
	secret := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}

	secretPart := hex.EncodeToString(secret)
	trimmed := strings.TrimPrefix(keyID, "key_")
	plain := fmt.Sprintf("%s%s_%s", apiKeyPrefix, trimmed, secretPart)
	return plain, domain.HashAPIKey(plain), nil
}

func newKeyID(id snowflake.ID) string {
	return "key_" + strings.ToUpper(strconv.FormatInt(int64(id), 36))
}

func isExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return now.After(*expiresAt)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
