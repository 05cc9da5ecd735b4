package reference

import (
	"context"

	"github.com/smallbiznis/obtain/internal/reference/domain"
)

type service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) domain.Service {
	return &service{repo: repo}
}

func (s *service) ListCurrencies(ctx context.Context) ([]domain.CurrencyView, error) {
	currencies, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CurrencyView, 0, len(currencies))
	for _, c := range currencies {
		view := domain.CurrencyView{Code: c.Code, Name: c.Name, Symbol: c.Symbol}
		if c.Flag != nil {
			view.Flag = *c.Flag
		}
		views = append(views, view)
	}
	return views, nil
}
