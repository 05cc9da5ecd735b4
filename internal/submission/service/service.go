package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/config"
	notificationdomain "github.com/smallbiznis/obtain/internal/notification/domain"
	"github.com/smallbiznis/obtain/internal/observability/metrics"
	"github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db"
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
	Tools   catalogdomain.Repository
	Outbox  notificationdomain.Outbox
	Clock   clock.Clock
	Config  config.Config
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	tools   catalogdomain.Repository
	outbox  notificationdomain.Outbox
	clock   clock.Clock
	prefix  string
	metrics *metrics.Metrics

	newReference func(prefix string, now time.Time) (string, error)
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("submission.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		tools:   p.Tools,
		outbox:  p.Outbox,
		clock:   p.Clock,
		prefix:  p.Config.Submission.ReferencePrefix,
		metrics: p.Metrics,

		newReference: NewReferenceNumber,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.SubmitResult, error) {
	req = normalizeSubmit(req)
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ref, err := s.newReference(s.prefix, now)
	if err != nil {
		return nil, err
	}

	submission := &domain.Submission{
		ID:                      s.genID.Generate().Int64(),
		ReferenceNumber:         ref,
		ToolName:                req.ToolName,
		ToolWebsite:             req.ToolWebsite,
		ToolCategory:            req.ToolCategory,
		ToolPricing:             req.ToolPricing,
		ToolDescription:         req.ToolDescription,
		ToolDetailedDescription: optional(req.ToolDetailedDescription),
		ToolFeatures:            splitNonEmpty(req.ToolFeatures, "\n"),
		ToolTags:                splitNonEmpty(req.ToolTags, ","),
		ExtraLinks:              joinLinks(req.ExtraLink1, req.ExtraLink2, req.ExtraLink3),
		ListingType:             req.ListingType,
		ContactName:             req.ContactName,
		ContactEmail:            req.ContactEmail,
		ContactCompany:          optional(req.ContactCompany),
		UserTimezone:            optional(req.UserTimezone),
		Status:                  domain.StatusPending,
		OwnerID:                 req.OwnerID,
		SubmissionDate:          now,
		UpdatedAt:               now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, submission); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrConflict
			}
			return err
		}
		return s.outbox.Enqueue(ctx, tx, notificationdomain.Message{
			Kind:            notificationdomain.KindSubmissionReceived,
			Recipient:       submission.ContactEmail,
			DisplayName:     submission.ContactName,
			ReferenceNumber: submission.ReferenceNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSubmission(ctx, submission.ListingType)
	s.log.Info("tool submission received",
		zap.Int64("submission_id", submission.ID),
		zap.String("reference_number", submission.ReferenceNumber),
		zap.String("listing_type", submission.ListingType),
	)

	return &domain.SubmitResult{
		SubmissionID:    strconv.FormatInt(submission.ID, 10),
		ReferenceNumber: submission.ReferenceNumber,
	}, nil
}

// Approve creates one tool per pending submission and marks it approved.
func (s *Service) Approve(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionApprove, ids, domain.StatusPending, domain.StatusApproved,
		func(ctx context.Context, tx *gorm.DB, sub *domain.Submission, result *domain.ReviewResult) (bool, error) {
			now := s.clock.Now()
			tool := toolFromSubmission(sub, s.genID.Generate().Int64(), now)
			notes := "Approved and created as tool ID: " + strconv.FormatInt(tool.ID, 10)

			// Flip before inserting: zero rows means another approver won.
			affected, err := s.repo.Transition(ctx, tx, sub.ID, domain.StatusPending, domain.StatusApproved, &notes, now)
			if err != nil || affected == 0 {
				return false, err
			}
			if err := s.tools.Insert(ctx, tx, tool); err != nil {
				return false, err
			}
			result.ToolIDs = append(result.ToolIDs, strconv.FormatInt(tool.ID, 10))
			return true, nil
		},
	)
}

func (s *Service) Reject(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionReject, ids, domain.StatusPending, domain.StatusRejected, nil)
}

// MarkReadyForLive queues the payment request email alongside the status change.
func (s *Service) MarkReadyForLive(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionReadyForLive, ids, domain.StatusApproved, domain.StatusReadyToLive,
		func(ctx context.Context, tx *gorm.DB, sub *domain.Submission, _ *domain.ReviewResult) (bool, error) {
			affected, err := s.repo.Transition(ctx, tx, sub.ID, domain.StatusApproved, domain.StatusReadyToLive, nil, s.clock.Now())
			if err != nil || affected == 0 {
				return false, err
			}
			err = s.outbox.Enqueue(ctx, tx, notificationdomain.Message{
				Kind:            notificationdomain.KindPaymentRequest,
				Recipient:       sub.ContactEmail,
				DisplayName:     sub.ContactName,
				ReferenceNumber: sub.ReferenceNumber,
			})
			if err != nil {
				return false, err
			}
			return true, nil
		},
	)
}

func (s *Service) MarkLive(ctx context.Context, ids []string) (*domain.ReviewResult, error) {
	return s.review(ctx, domain.ActionMarkLive, ids, domain.StatusReadyToLive, domain.StatusLive, nil)
}

// Apply runs a named bulk action.
func (s *Service) Apply(ctx context.Context, action domain.Action, ids []string) (*domain.ReviewResult, error) {
	switch action {
	case domain.ActionApprove:
		return s.Approve(ctx, ids)
	case domain.ActionReject:
		return s.Reject(ctx, ids)
	case domain.ActionReadyForLive:
		return s.MarkReadyForLive(ctx, ids)
	case domain.ActionMarkLive:
		return s.MarkLive(ctx, ids)
	default:
		return nil, domain.ErrInvalidAction
	}
}

var listColumns = option.Columns{
	"reference_number": "reference_number",
	"tool_name":        "tool_name",
	"tool_website":     "tool_website",
	"tool_category":    "tool_category",
	"tool_pricing":     "tool_pricing",
	"listing_type":     "listing_type",
	"contact_name":     "contact_name",
	"contact_email":    "contact_email",
	"status":           "status",
	"submission_date":  "submission_date",
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
		Order:  option.WithOrdering(listColumns, req.Ordering, "submission_date DESC, id DESC"),
		Offset: (page.Page - 1) * page.PerPage,
		Limit:  page.PerPage,
	})
	if err != nil {
		return nil, err
	}

	views := make([]domain.SubmissionView, 0, len(items))
	for i := range items {
		views = append(views, ToView(&items[i]))
	}
	return &domain.ListResponse{
		Submissions: views,
		Pagination:  pagination.BuildPageInfo(page, total),
	}, nil
}

// moveFunc performs the guarded transition for one locked submission and any
// side effects. It reports whether the row actually moved.
type moveFunc func(ctx context.Context, tx *gorm.DB, sub *domain.Submission, result *domain.ReviewResult) (bool, error)

func (s *Service) review(ctx context.Context, action domain.Action, ids []string, from, to domain.Status, move moveFunc) (*domain.ReviewResult, error) {
	submissionIDs, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}

	if move == nil {
		move = func(ctx context.Context, tx *gorm.DB, sub *domain.Submission, _ *domain.ReviewResult) (bool, error) {
			affected, err := s.repo.Transition(ctx, tx, sub.ID, from, to, nil, s.clock.Now())
			return affected > 0, err
		}
	}

	result := &domain.ReviewResult{ToolIDs: []string{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.FindByIDsForUpdate(ctx, tx, submissionIDs)
		if err != nil {
			return err
		}
		if len(rows) != len(submissionIDs) {
			return domain.ErrNotFound
		}

		for i := range rows {
			if rows[i].Status != from {
				continue
			}
			moved, err := move(ctx, tx, &rows[i], result)
			if err != nil {
				return err
			}
			if moved {
				result.Affected++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReviewTransition(ctx, "submission", string(action), result.Affected)
	s.log.Info("submission review applied",
		zap.String("action", string(action)),
		zap.Int("requested", len(submissionIDs)),
		zap.Int64("affected", result.Affected),
	)
	return result, nil
}

func toolFromSubmission(sub *domain.Submission, toolID int64, now time.Time) *catalogdomain.Tool {
	listingType := catalogdomain.ListingType(sub.ListingType)
	tool := &catalogdomain.Tool{
		ID:                  toolID,
		Slug:                slug.Make(sub.ToolName),
		Name:                sub.ToolName,
		Description:         sub.ToolDescription,
		DetailedDescription: sub.ToolDetailedDescription,
		Category:            sub.ToolCategory,
		Pricing:             catalogdomain.Pricing(sub.ToolPricing),
		WebsiteURL:          sub.ToolWebsite,
		ExtraLinks:          sub.ExtraLinks,
		ListingType:         listingType,
		Tags:                copyStrings(sub.ToolTags),
		Features:            copyStrings(sub.ToolFeatures),
		IsActive:            true,
		IsVerified:          listingType.Verifies(),
		ContactName:         &sub.ContactName,
		ContactEmail:        &sub.ContactEmail,
		ContactCompany:      sub.ContactCompany,
		UserTimezone:        sub.UserTimezone,
		OwnerID:             sub.OwnerID,
		DateAdded:           now,
		UpdatedAt:           now,
	}
	if tool.IsVerified {
		verifiedAt := now
		tool.VerificationDate = &verifiedAt
	}
	return tool
}

func ToView(sub *domain.Submission) domain.SubmissionView {
	return domain.SubmissionView{
		ID:                      strconv.FormatInt(sub.ID, 10),
		ReferenceNumber:         sub.ReferenceNumber,
		ToolName:                sub.ToolName,
		ToolWebsite:             sub.ToolWebsite,
		ToolCategory:            sub.ToolCategory,
		ToolPricing:             sub.ToolPricing,
		ToolDescription:         sub.ToolDescription,
		ToolDetailedDescription: sub.ToolDetailedDescription,
		ToolFeatures:            copyStrings(sub.ToolFeatures),
		ToolTags:                copyStrings(sub.ToolTags),
		ExtraLinks:              splitNonEmpty(sub.ExtraLinks, ","),
		ListingType:             sub.ListingType,
		ContactName:             sub.ContactName,
		ContactEmail:            sub.ContactEmail,
		ContactCompany:          sub.ContactCompany,
		UserTimezone:            sub.UserTimezone,
		Status:                  string(sub.Status),
		AdminNotes:              sub.AdminNotes,
		SubmissionDate:          sub.SubmissionDate,
	}
}
