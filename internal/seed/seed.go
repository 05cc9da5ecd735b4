package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/auth/password"
	"github.com/smallbiznis/obtain/internal/config"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminDisplay = "Obtain Admin"
	bootstrapKeyID      = "key_BOOTSTRAP"
	bootstrapKeyName    = "bootstrap"
)

type currencySeed struct {
	Code   string
	Name   string
	Symbol string
	Flag   string
}

var defaultCurrencies = []currencySeed{
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹", Flag: "🇮🇳"},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Flag: "🇺🇸"},
	{Code: "EUR", Name: "Euro", Symbol: "€", Flag: "🇪🇺"},
	{Code: "GBP", Name: "British Pound", Symbol: "£", Flag: "🇬🇧"},
}

type planSeed struct {
	Name         string
	Type         pricingdomain.PlanType
	DurationDays *int
	// Prices in minor units keyed by currency code.
	Prices map[string]int64
}

func days(n int) *int { return &n }

var defaultPlans = []planSeed{
	{Name: "Verified", Type: pricingdomain.PlanTypeListing, Prices: map[string]int64{"INR": 99900, "USD": 1900}},
	{Name: "Featured", Type: pricingdomain.PlanTypeListing, Prices: map[string]int64{"INR": 249900, "USD": 4900}},
	{Name: "Premium", Type: pricingdomain.PlanTypeListing, Prices: map[string]int64{"INR": 499900, "USD": 9900}},
	{Name: "Weekly Spotlight", Type: pricingdomain.PlanTypeAdvertisement, DurationDays: days(7), Prices: map[string]int64{"INR": 199900, "USD": 2900}},
	{Name: "Monthly Spotlight", Type: pricingdomain.PlanTypeAdvertisement, DurationDays: days(30), Prices: map[string]int64{"INR": 599900, "USD": 7900}},
}

// Bootstrap seeds reference data and the bootstrap admin in one transaction.
// Every step is idempotent.
func Bootstrap(ctx context.Context, db *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig, now time.Time) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := EnsureCurrencies(ctx, tx, now); err != nil {
			return err
		}
		if cfg.SeedPricing {
			if err := EnsurePlans(ctx, tx, node, now); err != nil {
				return err
			}
		}
		if strings.TrimSpace(cfg.AdminEmail) != "" {
			if _, err := EnsureAdmin(ctx, tx, node, cfg, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func EnsureCurrencies(ctx context.Context, tx *gorm.DB, now time.Time) error {
	for _, seed := range defaultCurrencies {
		var existing referencedomain.Currency
		err := tx.WithContext(ctx).Where("code = ?", seed.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		flag := seed.Flag
		currency := referencedomain.Currency{
			Code:      seed.Code,
			Name:      seed.Name,
			Symbol:    seed.Symbol,
			Flag:      &flag,
			MinorUnit: 2,
			IsActive:  true,
			CreatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&currency).Error; err != nil {
			return err
		}
	}
	return nil
}

func EnsurePlans(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	for _, seed := range defaultPlans {
		var plan pricingdomain.Plan
		err := tx.WithContext(ctx).
			Where("type = ? AND name = ?", seed.Type, seed.Name).
			First(&plan).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			plan = pricingdomain.Plan{
				ID:           node.Generate().Int64(),
				Name:         seed.Name,
				Type:         seed.Type,
				DurationDays: seed.DurationDays,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&plan).Error; err != nil {
				return err
			}
		}

		for _, currency := range defaultCurrencies {
			cents, ok := seed.Prices[currency.Code]
			if !ok {
				continue
			}
			var price pricingdomain.PlanPrice
			err := tx.WithContext(ctx).
				Where("plan_id = ? AND currency_code = ?", plan.ID, currency.Code).
				First(&price).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			price = pricingdomain.PlanPrice{
				ID:           node.Generate().Int64(),
				PlanID:       plan.ID,
				CurrencyCode: currency.Code,
				PriceCents:   cents,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&price).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// EnsureAdmin creates the bootstrap superuser and, when a raw key is
// configured, registers its hash as an API key.
func EnsureAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig, now time.Time) (*authdomain.User, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil, errors.New("bootstrap admin email is required")
	}

	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = authdomain.User{
			ID:          node.Generate().Int64(),
			Email:       email,
			DisplayName: defaultAdminDisplay,
			Role:        authdomain.RoleSuperuser,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if cfg.AdminPassword != "" {
			hashed, err := password.Hash(cfg.AdminPassword)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = &hashed
		}
		if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	}

	rawKey := strings.TrimSpace(cfg.AdminAPIKey)
	if rawKey == "" {
		return &user, nil
	}

	hash := authdomain.HashAPIKey(rawKey)
	var key authdomain.APIKey
	err = tx.WithContext(ctx).Where("key_hash = ?", hash).First(&key).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// A rotated bootstrap key replaces the previous one.
	if err := tx.WithContext(ctx).Where("key_id = ?", bootstrapKeyID).Delete(&authdomain.APIKey{}).Error; err != nil {
		return nil, err
	}
	key = authdomain.APIKey{
		ID:        node.Generate().Int64(),
		UserID:    user.ID,
		KeyID:     bootstrapKeyID,
		Name:      bootstrapKeyName,
		KeyHash:   hash,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&key).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
