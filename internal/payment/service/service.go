package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/observability/metrics"
	"github.com/smallbiznis/obtain/internal/payment/domain"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Prices  pricingdomain.Repository
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	prices  pricingdomain.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		prices:  p.Prices,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// Record stores a pending payment priced from the chosen plan price.
func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (*domain.PaymentView, error) {
	v := &validation.Errors{}
	v.Required("submission_id", req.SubmissionID)
	v.Required("plan_price_id", req.PlanPriceID)
	if err := v.Err(); err != nil {
		return nil, err
	}

	submissionID, err := parseID(req.SubmissionID)
	if err != nil {
		return nil, err
	}
	priceID, err := parseID(req.PlanPriceID)
	if err != nil {
		return nil, err
	}
	var toolID *int64
	if strings.TrimSpace(req.ToolID) != "" {
		id, err := parseID(req.ToolID)
		if err != nil {
			return nil, err
		}
		toolID = &id
	}

	now := s.clock.Now()
	var payment *domain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		price, err := s.prices.FindPrice(ctx, tx, priceID)
		if err != nil {
			return err
		}
		if price == nil {
			return pricingdomain.ErrNotFound
		}
		if !price.IsActive || !price.PlanActive {
			return domain.ErrPriceInactive
		}

		ok, err := s.repo.SubmissionExists(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrSubmissionNotFound
		}
		if toolID != nil {
			ok, err := s.repo.ToolExists(ctx, tx, *toolID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrToolNotFound
			}
		}

		payment = &domain.Payment{
			ID:             s.genID.Generate().Int64(),
			SubmissionID:   submissionID,
			ToolID:         toolID,
			PlanPriceID:    price.ID,
			PlanType:       string(price.PlanType),
			CurrencyCode:   price.CurrencyCode,
			AmountCents:    price.EffectiveCents(),
			Status:         domain.StatusPending,
			GatewayOrderID: optional(req.GatewayOrderID),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if price.PlanType == pricingdomain.PlanTypeAdvertisement && price.PlanDuration != nil {
			start := now
			if req.StartsAt != nil {
				start = req.StartsAt.UTC()
			}
			end := start.AddDate(0, 0, *price.PlanDuration)
			payment.StartsAt = &start
			payment.EndsAt = &end
		}
		return s.repo.Insert(ctx, tx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentEvent(ctx, payment.PlanType, string(payment.Status))
	s.log.Info("payment recorded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("submission_id", payment.SubmissionID),
		zap.String("plan_type", payment.PlanType),
		zap.Int64("amount_cents", payment.AmountCents),
		zap.String("currency", payment.CurrencyCode),
	)
	view := toView(payment)
	return &view, nil
}

// Transition settles a pending payment. Settled payments never change again.
func (s *Service) Transition(ctx context.Context, id string, req domain.TransitionRequest) (*domain.PaymentView, error) {
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	v := &validation.Errors{}
	if v.Required("status", status) {
		v.OneOf("status", status, domain.TerminalStatusValues()...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	refs := domain.GatewayRefs{
		PaymentID: optional(req.GatewayPaymentID),
		OrderID:   optional(req.GatewayOrderID),
		Signature: optional(req.GatewaySignature),
	}

	var payment *domain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.Transition(ctx, tx, paymentID, domain.Status(status), refs, s.clock.Now())
		if err != nil {
			return err
		}
		payment, err = s.repo.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		if affected == 0 {
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.log.Warn("payment transition refused",
				zap.Int64("payment_id", paymentID),
				zap.String("requested_status", status),
			)
		}
		return nil, err
	}

	s.metrics.RecordPaymentEvent(ctx, payment.PlanType, string(payment.Status))
	s.log.Info("payment settled",
		zap.Int64("payment_id", payment.ID),
		zap.String("status", string(payment.Status)),
	)
	view := toView(payment)
	return &view, nil
}

// ActiveAdvertisement reports the successful advertisement payment covering
// now, if any.
func (s *Service) ActiveAdvertisement(ctx context.Context, toolID string) (*domain.AdvertisementStatus, error) {
	id, err := parseID(toolID)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListSuccessfulAdvertisements(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range payments {
		if payments[i].ActiveAt(now) {
			view := toView(&payments[i])
			return &domain.AdvertisementStatus{Active: true, Payment: &view}, nil
		}
	}
	return &domain.AdvertisementStatus{Active: false}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.PaymentView, error) {
	paymentID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}

	view := toView(payment)
	return &view, nil
}

func toView(p *domain.Payment) domain.PaymentView {
	view := domain.PaymentView{
		ID:               strconv.FormatInt(p.ID, 10),
		SubmissionID:     strconv.FormatInt(p.SubmissionID, 10),
		PlanPriceID:      strconv.FormatInt(p.PlanPriceID, 10),
		PlanType:         p.PlanType,
		Currency:         p.CurrencyCode,
		AmountCents:      p.AmountCents,
		Status:           string(p.Status),
		GatewayPaymentID: p.GatewayPaymentID,
		GatewayOrderID:   p.GatewayOrderID,
		StartsAt:         p.StartsAt,
		EndsAt:           p.EndsAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.ToolID != nil {
		toolID := strconv.FormatInt(*p.ToolID, 10)
		view.ToolID = &toolID
	}
	return view
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
