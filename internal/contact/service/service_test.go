package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/contact/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
	"github.com/smallbiznis/obtain/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Message{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Store: repository.ProvideStore[domain.Message](db),
		Clock: clk,
	})
}

func TestSubmitStoresMessage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	res, err := svc.Submit(context.Background(), domain.SubmitRequest{
		Name:    " Jane ",
		Email:   "jane@example.com",
		Country: "ID",
		Desc:    "Please add my tool",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SubmissionID)

	var stored domain.Message
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "Jane", stored.Name)
	require.NotNil(t, stored.Country)
	assert.Equal(t, "ID", *stored.Country)
	assert.Equal(t, "Please add my tool", stored.Description)
}

func TestSubmitRequiresFields(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	_, err := svc.Submit(context.Background(), domain.SubmitRequest{Email: "nope"})
	vErr, ok := validation.As(err)
	require.True(t, ok)
	require.Len(t, vErr.Errors, 3)
	assert.Equal(t, "name", vErr.Errors[0].Field)
	assert.Equal(t, "invalid_email", vErr.Errors[1].Code)
	assert.Equal(t, "desc", vErr.Errors[2].Field)
}

func TestListNewestFirstWithCountryFilter(t *testing.T) {
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)
	ctx := context.Background()

	for _, country := range []string{"ID", "US", "ID"} {
		_, err := svc.Submit(ctx, domain.SubmitRequest{Name: "N", Email: "n@example.com", Country: country, Desc: "hi"})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	res, err := svc.List(ctx, domain.ListRequest{ListQuery: option.ListQuery{Filters: map[string]string{"country": "ID"}, Ordering: "-contact_date"}})
	require.NoError(t, err)
	require.Len(t, res.Contacts, 2)
	assert.True(t, res.Contacts[0].CreatedAt.After(res.Contacts[1].CreatedAt))
	assert.EqualValues(t, 2, res.Pagination.Total)

	res, err = svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{Page: 2, PerPage: 2}})
	require.NoError(t, err)
	require.Len(t, res.Contacts, 1)
	assert.True(t, res.Pagination.HasPrev)
	assert.False(t, res.Pagination.HasNext)
}

func TestListSearchAndSortOverride(t *testing.T) {
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)
	ctx := context.Background()

	for _, name := range []string{"Maya", "Ari", "Bima"} {
		_, err := svc.Submit(ctx, domain.SubmitRequest{Name: name, Email: name + "@example.com", Desc: "hi"})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	res, err := svc.List(ctx, domain.ListRequest{ListQuery: option.ListQuery{
		Search:       "A@EXAMPLE",
		SearchFields: []string{"name", "email"},
		Ordering:     "contact_date",
	}})
	require.NoError(t, err)
	require.Len(t, res.Contacts, 2)
	assert.Equal(t, "Maya", res.Contacts[0].Name)
	assert.Equal(t, "Bima", res.Contacts[1].Name)
	assert.EqualValues(t, 2, res.Pagination.Total)

	res, err = svc.List(ctx, domain.ListRequest{
		SortBy:    "name",
		OrderBy:   "asc",
		ListQuery: option.ListQuery{Ordering: "-contact_date"},
	})
	require.NoError(t, err)
	require.Len(t, res.Contacts, 3)
	assert.Equal(t, "Ari", res.Contacts[0].Name)
}
