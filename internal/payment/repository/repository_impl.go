package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/obtain/internal/payment/domain"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	"gorm.io/gorm"
)

const paymentColumns = `id, submission_id, tool_id, plan_price_id, plan_type, currency_code, amount_cents,
	status, gateway_payment_id, gateway_order_id, gateway_signature, starts_at, ends_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, id int64, status domain.Status, refs domain.GatewayRefs, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments SET
			status = ?,
			gateway_payment_id = COALESCE(?, gateway_payment_id),
			gateway_order_id = COALESCE(?, gateway_order_id),
			gateway_signature = COALESCE(?, gateway_signature),
			updated_at = ?
		 WHERE id = ? AND status = ?`,
		status,
		refs.PaymentID,
		refs.OrderID,
		refs.Signature,
		now,
		id,
		domain.StatusPending,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) ListSuccessfulAdvertisements(ctx context.Context, db *gorm.DB, toolID int64) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+` FROM payments
		 WHERE tool_id = ? AND status = ? AND plan_type = ?
		 ORDER BY created_at DESC, id DESC`,
		toolID,
		domain.StatusSuccess,
		pricingdomain.PlanTypeAdvertisement,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SubmissionExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM tool_submissions WHERE id = ?`, id).Scan(&count).Error
	return count > 0, err
}

func (r *repo) ToolExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM tools WHERE id = ?`, id).Scan(&count).Error
	return count > 0, err
}
