package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/auth/password"
	"github.com/smallbiznis/obtain/internal/config"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var epoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.APIKey{},
		&referencedomain.Currency{},
		&pricingdomain.Plan{},
		&pricingdomain.PlanPrice{},
	))
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestBootstrapIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	cfg := config.BootstrapConfig{
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "changeme",
		AdminAPIKey:   "ob_bootstrap_secret",
		SeedPricing:   true,
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, Bootstrap(context.Background(), db, node, cfg, epoch))
	}

	assert.EqualValues(t, len(defaultCurrencies), count(t, db, &referencedomain.Currency{}))
	assert.EqualValues(t, len(defaultPlans), count(t, db, &pricingdomain.Plan{}))
	assert.EqualValues(t, 2*len(defaultPlans), count(t, db, &pricingdomain.PlanPrice{}))
	assert.EqualValues(t, 1, count(t, db, &authdomain.User{}))
	assert.EqualValues(t, 1, count(t, db, &authdomain.APIKey{}))

	var user authdomain.User
	require.NoError(t, db.First(&user).Error)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, authdomain.RoleSuperuser, user.Role)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, password.Verify("changeme", *user.PasswordHash))

	var key authdomain.APIKey
	require.NoError(t, db.First(&key).Error)
	assert.Equal(t, authdomain.HashAPIKey("ob_bootstrap_secret"), key.KeyHash)
	assert.Equal(t, user.ID, key.UserID)
}

func TestBootstrapRotatesKey(t *testing.T) {
	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	cfg := config.BootstrapConfig{AdminEmail: "admin@example.com", AdminAPIKey: "first"}

	require.NoError(t, Bootstrap(context.Background(), db, node, cfg, epoch))
	cfg.AdminAPIKey = "second"
	require.NoError(t, Bootstrap(context.Background(), db, node, cfg, epoch))

	var keys []authdomain.APIKey
	require.NoError(t, db.Find(&keys).Error)
	require.Len(t, keys, 1)
	assert.Equal(t, authdomain.HashAPIKey("second"), keys[0].KeyHash)
	assert.EqualValues(t, 0, count(t, db, &pricingdomain.Plan{}))
}

func TestAdvertisementPlansCarryDuration(t *testing.T) {
	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	require.NoError(t, Bootstrap(context.Background(), db, node, config.BootstrapConfig{SeedPricing: true}, epoch))

	var plans []pricingdomain.Plan
	require.NoError(t, db.Where("type = ?", pricingdomain.PlanTypeAdvertisement).Find(&plans).Error)
	require.NotEmpty(t, plans)
	for _, plan := range plans {
		require.NotNil(t, plan.DurationDays, plan.Name)
		assert.Positive(t, *plan.DurationDays)
	}
}
