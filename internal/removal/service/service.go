package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/observability/metrics"
	"github.com/smallbiznis/obtain/internal/removal/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
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
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("removal.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) Request(ctx context.Context, input domain.RequestInput) (*domain.RequestResult, error) {
	input = normalize(input)

	v := &validation.Errors{}
	v.Required("toolNameRemove", input.ToolName)
	v.Required("toolWebsiteRemove", input.ToolWebsite)
	v.Required("ownerName", input.OwnerName)
	hasEmail := v.Required("ownerEmail", input.OwnerEmail)
	hasMethod := v.Required("verificationMethod", input.VerificationMethod)
	hasReason := v.Required("removalReason", input.RemovalReason)
	if hasEmail {
		v.Email("ownerEmail", input.OwnerEmail)
	}
	if hasMethod {
		v.OneOf("verificationMethod", input.VerificationMethod, domain.VerificationMethods...)
	}
	if hasReason {
		v.OneOf("removalReason", input.RemovalReason, domain.RemovalReasons...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	req := &domain.Request{
		ID:                 s.genID.Generate().Int64(),
		ToolName:           input.ToolName,
		ToolWebsite:        input.ToolWebsite,
		ToolReference:      optional(input.ToolReference),
		OwnerName:          input.OwnerName,
		OwnerEmail:         input.OwnerEmail,
		OwnerCompany:       optional(input.OwnerCompany),
		VerificationMethod: input.VerificationMethod,
		RemovalReason:      input.RemovalReason,
		AdditionalDetails:  optional(input.AdditionalDetails),
		Status:             domain.StatusPending,
		RequestDate:        now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, req); err != nil {
		return nil, err
	}

	s.metrics.RecordRemovalRequest(ctx, req.RemovalReason)
	s.log.Info("tool removal requested",
		zap.Int64("removal_request_id", req.ID),
		zap.String("removal_reason", req.RemovalReason),
	)

	return &domain.RequestResult{RequestID: strconv.FormatInt(req.ID, 10)}, nil
}

func (s *Service) Verify(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionVerify, ids, domain.StatusPending, domain.StatusVerified)
}

// Complete only records the outcome. Taking the tool down is a separate admin
// action on the catalog.
func (s *Service) Complete(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionComplete, ids, domain.StatusVerified, domain.StatusCompleted)
}

func (s *Service) Reject(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionReject, ids, domain.StatusPending, domain.StatusRejected)
}

func (s *Service) Apply(ctx context.Context, action domain.Action, ids []string) (*domain.ReviewResult, error) {
	switch action {
	case domain.ActionVerify:
		return s.Verify(ctx, ids)
	case domain.ActionComplete:
		return s.Complete(ctx, ids)
	case domain.ActionReject:
		return s.Reject(ctx, ids)
	default:
		return nil, domain.ErrInvalidAction
	}
}

var listColumns = option.Columns{
	"tool_name":           "tool_name",
	"tool_website":        "tool_website",
	"owner_name":          "owner_name",
	"owner_email":         "owner_email",
	"removal_reason":      "removal_reason",
	"verification_method": "verification_method",
	"status":              "status",
	"request_date":        "request_date",
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	if status := strings.TrimSpace(req.Filters["status"]); status != "" {
		v := &validation.Errors{}
		if !v.OneOf("status", status, domain.StatusValues()...) {
			return nil, v
		}
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Where:  req.Where(listColumns),
		Order:  option.WithOrdering(listColumns, req.Ordering, "request_date DESC, id DESC"),
		Offset: (page.Page - 1) * page.PerPage,
		Limit:  page.PerPage,
	})
	if err != nil {
		return nil, err
	}

	views := make([]domain.RequestView, 0, len(items))
	for i := range items {
		views = append(views, toView(&items[i]))
	}
	return &domain.ListResponse{
		RemovalRequests: views,
		Pagination:      pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) review(ctx context.Context, action domain.Action, ids []string, from, to domain.Status) (*domain.ReviewResult, error) {
	requestIDs, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}

	result := &domain.ReviewResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.FindByIDsForUpdate(ctx, tx, requestIDs)
		if err != nil {
			return err
		}
		if len(rows) != len(requestIDs) {
			return domain.ErrNotFound
		}

		now := s.clock.Now()
		for _, row := range rows {
			if row.Status != from {
				continue
			}
			affected, err := s.repo.Transition(ctx, tx, row.ID, from, to, now)
			if err != nil {
				return err
			}
			result.Affected += affected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReviewTransition(ctx, "removal_request", string(action), result.Affected)
	s.log.Info("removal review applied",
		zap.String("action", string(action)),
		zap.Int("requested", len(requestIDs)),
		zap.Int64("affected", result.Affected),
	)
	return result, nil
}

func normalize(input domain.RequestInput) domain.RequestInput {
	input.ToolName = strings.TrimSpace(input.ToolName)
	input.ToolWebsite = strings.TrimSpace(input.ToolWebsite)
	input.ToolReference = strings.TrimSpace(input.ToolReference)
	input.OwnerName = strings.TrimSpace(input.OwnerName)
	input.OwnerEmail = strings.TrimSpace(input.OwnerEmail)
	input.OwnerCompany = strings.TrimSpace(input.OwnerCompany)
	input.VerificationMethod = strings.ToLower(strings.TrimSpace(input.VerificationMethod))
	input.RemovalReason = strings.ToLower(strings.TrimSpace(input.RemovalReason))
	input.AdditionalDetails = strings.TrimSpace(input.AdditionalDetails)
	return input
}

func toView(r *domain.Request) domain.RequestView {
	return domain.RequestView{
		ID:                 strconv.FormatInt(r.ID, 10),
		ToolName:           r.ToolName,
		ToolWebsite:        r.ToolWebsite,
		ToolReference:      r.ToolReference,
		OwnerName:          r.OwnerName,
		OwnerEmail:         r.OwnerEmail,
		OwnerCompany:       r.OwnerCompany,
		VerificationMethod: r.VerificationMethod,
		RemovalReason:      r.RemovalReason,
		AdditionalDetails:  r.AdditionalDetails,
		Status:             string(r.Status),
		AdminNotes:         r.AdminNotes,
		RequestDate:        r.RequestDate,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseIDs(ids []string) ([]int64, error) {
	if len(ids) == 0 {
		return nil, domain.ErrNoIDs
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
