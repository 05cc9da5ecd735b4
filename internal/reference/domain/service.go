package domain

import (
	"context"
	"errors"
)

type Service interface {
	ListCurrencies(ctx context.Context) ([]CurrencyView, error)
}

type CurrencyView struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Flag   string `json:"flag"`
}

var ErrCurrencyNotFound = errors.New("currency_not_found")
