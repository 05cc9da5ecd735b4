package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Pagination.Normalize()

	items, total, err := s.repo.ListActive(ctx, s.db, domain.ListFilter{
		Category:    strings.TrimSpace(req.Category),
		Pricing:     strings.TrimSpace(req.Pricing),
		ListingType: strings.TrimSpace(req.ListingType),
		Search:      strings.TrimSpace(req.Search),
		SortBy:      strings.ToLower(strings.TrimSpace(req.SortBy)),
		Offset:      (page.Page - 1) * page.PerPage,
		Limit:       page.PerPage,
	})
	if err != nil {
		return nil, err
	}

	tools := make([]domain.ToolView, 0, len(items))
	for i := range items {
		tools = append(tools, ToView(&items[i]))
	}

	return &domain.ListResponse{
		Tools:      tools,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ToolView, error) {
	toolID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	tool, err := s.repo.FindActiveByID(ctx, s.db, toolID)
	if err != nil {
		return nil, err
	}
	if tool == nil {
		return nil, domain.ErrNotFound
	}

	view := ToView(tool)
	return &view, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ActiveCategories(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	row, err := s.repo.Stats(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		TotalTools:      row.TotalTools,
		TotalCategories: row.TotalCategories,
		FreeTools:       row.FreeTools,
	}, nil
}

// SetActive toggles public visibility. Inactive tools are still returned here
// so admins can see what they changed.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.ToolView, error) {
	toolID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var tool *domain.Tool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.SetActive(ctx, tx, toolID, active, s.clock.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		tool, err = s.repo.FindByID(ctx, tx, toolID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tool == nil {
		return nil, domain.ErrNotFound
	}

	s.log.Info("tool visibility changed",
		zap.Int64("tool_id", toolID),
		zap.Bool("is_active", active),
	)

	view := ToView(tool)
	return &view, nil
}

func (s *Service) SeedSamples(ctx context.Context) (int, error) {
	var created int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrSampleExists
		}

		tools := SampleTools(s.genID, s.clock.Now())
		if err := s.repo.InsertBatch(ctx, tx, tools); err != nil {
			return err
		}
		created = len(tools)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("sample tools created", zap.Int("count", created))
	return created, nil
}

// ToView projects a Tool for public consumption.
func ToView(t *domain.Tool) domain.ToolView {
	return domain.ToolView{
		ID:                  strconv.FormatInt(t.ID, 10),
		Slug:                t.Slug,
		Name:                t.Name,
		Description:         t.Description,
		DetailedDescription: t.DetailedDescription,
		Category:            t.Category,
		Pricing:             string(t.Pricing),
		WebsiteURL:          t.WebsiteURL,
		LogoURL:             t.LogoURL,
		ExtraLinks:          splitLinks(t.ExtraLinks),
		ListingType:         string(t.ListingType),
		Tags:                nonNil(t.Tags),
		Features:            nonNil(t.Features),
		DateAdded:           t.DateAdded,
		Rating:              t.Rating,
		IsActive:            t.IsActive,
		IsVerified:          t.IsVerified,
		VerificationDate:    t.VerificationDate,
	}
}

func parseID(id string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || value <= 0 {
		return 0, domain.ErrInvalidID
	}
	return value, nil
}

func splitLinks(joined string) []string {
	links := []string{}
	for _, link := range strings.Split(joined, ",") {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}
	return links
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
