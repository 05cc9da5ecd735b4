package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/pricing/domain"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Currencies referencedomain.Repository
	Clock      clock.Clock
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	currencies referencedomain.Repository
	clock      clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("pricing.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		currencies: p.Currencies,
		clock:      p.Clock,
	}
}

func (s *Service) ListPrices(ctx context.Context, currencyCode string, planType domain.PlanType) ([]domain.PriceView, error) {
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))
	v := &validation.Errors{}
	v.Required("currency", currencyCode)
	v.OneOf("type", string(planType), domain.PlanTypeValues()...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListActivePrices(ctx, s.db, currencyCode, planType)
	if err != nil {
		return nil, err
	}

	views := make([]domain.PriceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toPriceView(row))
	}
	return views, nil
}

func (s *Service) CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.PlanView, error) {
	name := strings.TrimSpace(req.Name)
	planType := strings.ToLower(strings.TrimSpace(req.Type))

	v := &validation.Errors{}
	v.Required("name", name)
	if v.Required("type", planType) && v.OneOf("type", planType, domain.PlanTypeValues()...) {
		switch domain.PlanType(planType) {
		case domain.PlanTypeAdvertisement:
			if req.DurationDays == nil || *req.DurationDays <= 0 {
				v.Add("duration_days", "invalid_duration", "Advertisement plans need a positive duration_days")
			}
		case domain.PlanTypeListing:
			if req.DurationDays != nil {
				v.Add("duration_days", "invalid_duration", "Listing plans do not take a duration")
			}
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	plan := &domain.Plan{
		ID:           s.genID.Generate().Int64(),
		Name:         name,
		Type:         domain.PlanType(planType),
		DurationDays: req.DurationDays,
		IsActive:     req.IsActive == nil || *req.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertPlan(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrPlanConflict
		}
		return nil, err
	}

	s.log.Info("plan created",
		zap.Int64("plan_id", plan.ID),
		zap.String("plan_type", string(plan.Type)),
	)
	return toPlanView(plan), nil
}

func (s *Service) CreatePrice(ctx context.Context, req domain.CreatePriceRequest) (*domain.PlanPriceView, error) {
	currencyCode := strings.ToUpper(strings.TrimSpace(req.Currency))

	v := &validation.Errors{}
	v.Required("plan_id", req.PlanID)
	v.Required("currency", currencyCode)
	if req.PriceCents < 0 {
		v.Add("price_cents", "invalid_amount", "price_cents must not be negative")
	}
	if req.DiscountPriceCents != nil && (*req.DiscountPriceCents < 0 || *req.DiscountPriceCents > req.PriceCents) {
		v.Add("discount_price_cents", "invalid_amount", "discount_price_cents must be between 0 and price_cents")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	planID, err := strconv.ParseInt(strings.TrimSpace(req.PlanID), 10, 64)
	if err != nil || planID <= 0 {
		return nil, domain.ErrPlanNotFound
	}

	now := s.clock.Now()
	price := &domain.PlanPrice{
		ID:                 s.genID.Generate().Int64(),
		PlanID:             planID,
		CurrencyCode:       currencyCode,
		PriceCents:         req.PriceCents,
		DiscountPriceCents: req.DiscountPriceCents,
		IsActive:           req.IsActive == nil || *req.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := s.repo.FindPlan(ctx, tx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrPlanNotFound
		}
		currency, err := s.currencies.FindCurrency(ctx, tx, currencyCode)
		if err != nil {
			return err
		}
		if currency == nil {
			return validation.New("currency", "invalid_choice", fmt.Sprintf("Unknown currency: %s", currencyCode))
		}

		if err := s.repo.InsertPrice(ctx, tx, price); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("plan price created",
		zap.Int64("plan_price_id", price.ID),
		zap.Int64("plan_id", price.PlanID),
		zap.String("currency", price.CurrencyCode),
	)
	return &domain.PlanPriceView{
		ID:                 strconv.FormatInt(price.ID, 10),
		PlanID:             strconv.FormatInt(price.PlanID, 10),
		Currency:           price.CurrencyCode,
		PriceCents:         price.PriceCents,
		DiscountPriceCents: price.DiscountPriceCents,
		IsActive:           price.IsActive,
	}, nil
}

func (s *Service) GetPrice(ctx context.Context, id string) (*domain.PriceRow, error) {
	priceID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || priceID <= 0 {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindPrice(ctx, s.db, priceID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	return row, nil
}

func toPriceView(row domain.PriceRow) domain.PriceView {
	// Whole units by integer division, never rounded up.
	whole := row.PriceCents / 100
	view := domain.PriceView{
		Code:           row.CurrencyCode,
		PlanName:       row.PlanName,
		Symbol:         row.Symbol,
		Price:          whole,
		FormattedPrice: fmt.Sprintf("%s%d", row.Symbol, whole),
	}
	if row.PlanType == domain.PlanTypeAdvertisement {
		view.PlanDuration = row.PlanDuration
	}
	return view
}

func toPlanView(plan *domain.Plan) *domain.PlanView {
	return &domain.PlanView{
		ID:           strconv.FormatInt(plan.ID, 10),
		Name:         plan.Name,
		Type:         string(plan.Type),
		DurationDays: plan.DurationDays,
		IsActive:     plan.IsActive,
	}
}
