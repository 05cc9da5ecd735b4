package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/contact/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
	"github.com/smallbiznis/obtain/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var sortable = map[string]bool{
	"created_at": true,
	"name":       true,
	"country":    true,
}

var listColumns = option.Columns{
	"name":         "name",
	"email":        "email",
	"country":      "country",
	"contact_date": "created_at",
}

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Store repository.Repository[domain.Message]
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[domain.Message]
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("contact.service"),
		genID: p.GenID,
		store: p.Store,
		clock: p.Clock,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.SubmitResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	desc := strings.TrimSpace(req.Desc)

	v := &validation.Errors{}
	v.Required("name", name)
	if v.Required("email", email) {
		v.Email("email", email)
	}
	v.Required("desc", desc)
	if err := v.Err(); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Email:       email,
		Description: desc,
		CreatedAt:   s.clock.Now(),
	}
	if country := strings.TrimSpace(req.Country); country != "" {
		msg.Country = &country
	}
	if err := s.store.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.log.Info("contact message saved", zap.Int64("contact_id", msg.ID))
	return &domain.SubmitResult{SubmissionID: strconv.FormatInt(msg.ID, 10)}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Pagination.Normalize()
	where := req.Where(listColumns)

	total, err := s.store.Count(ctx, nil, where...)
	if err != nil {
		return nil, err
	}

	order := option.WithOrdering(listColumns, req.Ordering, "created_at DESC, id DESC")
	if strings.TrimSpace(req.SortBy) != "" {
		order = option.WithSortBy(option.WithQuerySortBy(req.SortBy, req.OrderBy, sortable))
	}
	opts := append(where, order, option.WithPaging(page.Page, page.PerPage))
	items, err := s.store.Find(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(items))
	for _, item := range items {
		views = append(views, domain.MessageView{
			ID:        strconv.FormatInt(item.ID, 10),
			Name:      item.Name,
			Email:     item.Email,
			Country:   item.Country,
			Desc:      item.Description,
			CreatedAt: item.CreatedAt,
		})
	}
	return &domain.ListResponse{
		Contacts:   views,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}
