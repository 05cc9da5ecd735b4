package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/auth/password"
	"github.com/smallbiznis/obtain/internal/auth/repository"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/obtain/internal/catalog/repository"
	"github.com/smallbiznis/obtain/internal/clock"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
	submissionrepository "github.com/smallbiznis/obtain/internal/submission/repository"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.APIKey{},
		&catalogdomain.Tool{},
		&submissiondomain.Submission{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		Tools:       catalogrepository.Provide(),
		Submissions: submissionrepository.Provide(),
		Clock:       clk,
	})
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(epoch))

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    " Admin@Example.com ",
		Password: "s3cret",
		Role:     "superuser",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, "admin", user.DisplayName)
	assert.Equal(t, "superuser", user.Role)

	var stored domain.User
	require.NoError(t, db.First(&stored).Error)
	require.NotNil(t, stored.PasswordHash)
	assert.True(t, password.Verify("s3cret", *stored.PasswordHash))

	_, err = svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "admin@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestCreateUserValidates(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(epoch))

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "nope", Role: "owner"})
	vErr, ok := validation.As(err)
	require.True(t, ok)
	require.Len(t, vErr.Errors, 2)
	assert.Equal(t, "invalid_email", vErr.Errors[0].Code)
	assert.Equal(t, "role", vErr.Errors[1].Field)
}

func TestAuthenticateWithIssuedKey(t *testing.T) {
	db := setupTestDB(t)
	clk := clock.NewFakeClock(epoch)
	svc := newTestService(t, db, clk)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "staff@example.com"})
	require.NoError(t, err)
	secret, err := svc.IssueAPIKey(ctx, user.ID, "ci")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret.APIKey, apiKeyPrefix))

	principal, err := svc.Authenticate(ctx, secret.APIKey)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, principal.Role)
	assert.Equal(t, secret.KeyID, principal.KeyID)

	var key domain.APIKey
	require.NoError(t, db.First(&key).Error)
	require.NotNil(t, key.LastUsedAt)
	assert.NotEqual(t, secret.APIKey, key.KeyHash)

	_, err = svc.Authenticate(ctx, secret.APIKey+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	expired := epoch.Add(time.Hour)
	require.NoError(t, db.Model(&domain.APIKey{}).Where("id = ?", key.ID).Update("expires_at", expired).Error)
	clk.Advance(2 * time.Hour)
	_, err = svc.Authenticate(ctx, secret.APIKey)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestIssueAPIKeyUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(epoch))

	_, err := svc.IssueAPIKey(context.Background(), "42", "ci")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.IssueAPIKey(context.Background(), "abc", "ci")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeleteUserDetachesOwnedRecords(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(epoch))
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "owner@example.com"})
	require.NoError(t, err)
	ownerID, err := strconv.ParseInt(user.ID, 10, 64)
	require.NoError(t, err)
	secret, err := svc.IssueAPIKey(ctx, user.ID, "ci")
	require.NoError(t, err)

	require.NoError(t, db.Create(&catalogdomain.Tool{
		ID:          1,
		Slug:        "acme",
		Name:        "Acme",
		Description: "Acme",
		Category:    "Writing",
		Pricing:     catalogdomain.PricingFree,
		WebsiteURL:  "https://acme.example.com",
		ListingType: catalogdomain.ListingSimple,
		IsActive:    true,
		OwnerID:     &ownerID,
		DateAdded:   epoch,
		UpdatedAt:   epoch,
	}).Error)
	require.NoError(t, db.Create(&submissiondomain.Submission{
		ID:              2,
		ReferenceNumber: "APP-20260301120000-ABCDEFGH",
		ToolName:        "Acme",
		ToolWebsite:     "https://acme.example.com",
		ToolCategory:    "Writing",
		ToolPricing:     "free",
		ToolDescription: "Acme",
		ListingType:     "simple",
		ContactName:     "Jane",
		ContactEmail:    "jane@example.com",
		Status:          submissiondomain.StatusApproved,
		OwnerID:         &ownerID,
		SubmissionDate:  epoch,
		UpdatedAt:       epoch,
	}).Error)

	res, err := svc.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DetachedTools)
	assert.EqualValues(t, 1, res.DetachedSubmissions)

	var tool catalogdomain.Tool
	require.NoError(t, db.First(&tool, "id = ?", 1).Error)
	assert.Nil(t, tool.OwnerID)
	var sub submissiondomain.Submission
	require.NoError(t, db.First(&sub, "id = ?", 2).Error)
	assert.Nil(t, sub.OwnerID)

	_, err = svc.Authenticate(ctx, secret.APIKey)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
