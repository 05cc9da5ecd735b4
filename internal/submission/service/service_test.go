package service

import (
	"context"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/obtain/internal/catalog/repository"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/config"
	notificationdomain "github.com/smallbiznis/obtain/internal/notification/domain"
	notificationrepository "github.com/smallbiznis/obtain/internal/notification/repository"
	notificationservice "github.com/smallbiznis/obtain/internal/notification/service"
	"github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/internal/submission/repository"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var referencePattern = regexp.MustCompile(`^APP-\d{14}-[A-Z0-9]{8}$`)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Submission{},
		&catalogdomain.Tool{},
		&notificationdomain.OutboxEntry{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	outbox := notificationservice.NewOutbox(notificationservice.OutboxParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  notificationrepository.Provide(),
		Clock: clk,
	})

	cfg := config.Config{}
	cfg.Submission.ReferencePrefix = "APP"

	return New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Tools:  catalogrepository.Provide(),
		Outbox: outbox,
		Clock:  clk,
		Config: cfg,
	})
}

func validSubmitRequest() domain.SubmitRequest {
	return domain.SubmitRequest{
		ToolName:        "Acme Writer",
		ToolWebsite:     "https://acme.example.com",
		ToolCategory:    "Writing",
		ToolPricing:     "freemium",
		ToolDescription: "Drafts copy.",
		ToolFeatures:    "Drafting\n\n  Summaries  \n",
		ToolTags:        "writing, ai ,, copy",
		ExtraLink1:      "https://docs.example.com",
		ExtraLink3:      "https://blog.example.com",
		ListingType:     "featured",
		ContactName:     "Jane",
		ContactEmail:    "jane@example.com",
		UserTimezone:    "Asia/Jakarta",
	}
}

func submit(t *testing.T, svc domain.Service, req domain.SubmitRequest) string {
	t.Helper()

	res, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	return res.SubmissionID
}

func loadSubmission(t *testing.T, db *gorm.DB, id string) domain.Submission {
	t.Helper()

	subID, err := strconv.ParseInt(id, 10, 64)
	require.NoError(t, err)
	var sub domain.Submission
	require.NoError(t, db.First(&sub, "id = ?", subID).Error)
	return sub
}

func outboxKinds(t *testing.T, db *gorm.DB) []notificationdomain.Kind {
	t.Helper()

	var rows []notificationdomain.OutboxEntry
	require.NoError(t, db.Order("created_at ASC, id ASC").Find(&rows).Error)
	kinds := make([]notificationdomain.Kind, 0, len(rows))
	for _, row := range rows {
		kinds = append(kinds, row.Kind)
	}
	return kinds
}

func TestSubmitStoresPendingSubmission(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 30, 45, 0, time.UTC)
	svc := newTestService(t, db, clock.NewFakeClock(now))

	res, err := svc.Submit(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, res.ReferenceNumber)
	assert.Contains(t, res.ReferenceNumber, "-20260301103045-")

	sub := loadSubmission(t, db, res.SubmissionID)
	assert.Equal(t, domain.StatusPending, sub.Status)
	assert.Equal(t, []string{"Drafting", "Summaries"}, []string(sub.ToolFeatures))
	assert.Equal(t, []string{"writing", "ai", "copy"}, []string(sub.ToolTags))
	assert.Equal(t, "https://docs.example.com,https://blog.example.com", sub.ExtraLinks)
	assert.Equal(t, "featured", sub.ListingType)
	require.NotNil(t, sub.UserTimezone)
	assert.Equal(t, "Asia/Jakarta", *sub.UserTimezone)

	assert.Equal(t, []notificationdomain.Kind{notificationdomain.KindSubmissionReceived}, outboxKinds(t, db))
}

func TestSubmitDuplicateReferenceIsConflict(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 30, 45, 0, time.UTC)
	svc := newTestService(t, db, clock.NewFakeClock(now)).(*Service)
	svc.newReference = func(prefix string, now time.Time) (string, error) {
		return prefix + "-20260301103045-AAAAAAAA", nil
	}

	first, err := svc.Submit(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	assert.Equal(t, "APP-20260301103045-AAAAAAAA", first.ReferenceNumber)

	res, err := svc.Submit(context.Background(), validSubmitRequest())
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, res)

	var count int64
	require.NoError(t, db.Model(&domain.Submission{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, []notificationdomain.Kind{notificationdomain.KindSubmissionReceived}, outboxKinds(t, db))
}

func TestSubmitDefaultsListingType(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	req := validSubmitRequest()
	req.ListingType = ""
	id := submit(t, svc, req)

	assert.Equal(t, "simple", loadSubmission(t, db, id).ListingType)
}

func TestSubmitCollectsAllMissingFields(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	_, err := svc.Submit(context.Background(), domain.SubmitRequest{
		ToolName:    "Only a name",
		ToolPricing: " ",
	})
	require.Error(t, err)

	vErr, ok := validation.As(err)
	require.True(t, ok)
	fields := make([]string, 0, len(vErr.Errors))
	for _, fe := range vErr.Errors {
		assert.Equal(t, "missing_field", fe.Code)
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"toolWebsite", "toolCategory", "toolPricing", "toolDescription", "contactName", "contactEmail"}, fields)
	assert.Equal(t, "Missing required field: toolWebsite", vErr.Errors[0].Message)

	var count int64
	require.NoError(t, db.Model(&domain.Submission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitRejectsInvalidChoices(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	req := validSubmitRequest()
	req.ToolPricing = "subscription"
	req.ListingType = "gold"
	req.ContactEmail = "not-an-email"

	_, err := svc.Submit(context.Background(), req)
	vErr, ok := validation.As(err)
	require.True(t, ok)
	require.Len(t, vErr.Errors, 3)
	assert.Equal(t, "toolPricing", vErr.Errors[0].Field)
	assert.Equal(t, "listingType", vErr.Errors[1].Field)
	assert.Equal(t, "contactEmail", vErr.Errors[2].Field)
}

func TestApproveCreatesVerifiedTool(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, clock.NewFakeClock(now))
	id := submit(t, svc, validSubmitRequest())

	res, err := svc.Approve(context.Background(), []string{id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)
	require.Len(t, res.ToolIDs, 1)

	sub := loadSubmission(t, db, id)
	assert.Equal(t, domain.StatusApproved, sub.Status)
	require.NotNil(t, sub.AdminNotes)
	assert.Equal(t, "Approved and created as tool ID: "+res.ToolIDs[0], *sub.AdminNotes)

	var tool catalogdomain.Tool
	require.NoError(t, db.First(&tool, "id = ?", res.ToolIDs[0]).Error)
	assert.Equal(t, "Acme Writer", tool.Name)
	assert.Equal(t, "acme-writer", tool.Slug)
	assert.True(t, tool.IsActive)
	assert.True(t, tool.IsVerified)
	require.NotNil(t, tool.VerificationDate)
	assert.True(t, tool.VerificationDate.Equal(now))
	assert.Equal(t, []string{"writing", "ai", "copy"}, []string(tool.Tags))
	assert.Equal(t, "https://docs.example.com,https://blog.example.com", tool.ExtraLinks)
}

func TestApproveSimpleListingIsNotVerified(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	req := validSubmitRequest()
	req.ListingType = "simple"
	id := submit(t, svc, req)

	res, err := svc.Approve(context.Background(), []string{id})
	require.NoError(t, err)
	require.Len(t, res.ToolIDs, 1)

	var tool catalogdomain.Tool
	require.NoError(t, db.First(&tool, "id = ?", res.ToolIDs[0]).Error)
	assert.False(t, tool.IsVerified)
	assert.Nil(t, tool.VerificationDate)
}

func TestApproveTwiceCreatesOneTool(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	id := submit(t, svc, validSubmitRequest())

	_, err := svc.Approve(context.Background(), []string{id})
	require.NoError(t, err)

	res, err := svc.Approve(context.Background(), []string{id, id})
	require.NoError(t, err)
	assert.Zero(t, res.Affected)
	assert.Empty(t, res.ToolIDs)

	var count int64
	require.NoError(t, db.Model(&catalogdomain.Tool{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApproveUnknownIDFailsWholeBatch(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	id := submit(t, svc, validSubmitRequest())

	_, err := svc.Approve(context.Background(), []string{id, "999"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.StatusPending, loadSubmission(t, db, id).Status)

	_, err = svc.Approve(context.Background(), []string{"abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Approve(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoIDs)
}

func TestRejectOnlyMovesPending(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	approved := submit(t, svc, validSubmitRequest())
	pending := submit(t, svc, validSubmitRequest())
	_, err := svc.Approve(context.Background(), []string{approved})
	require.NoError(t, err)

	res, err := svc.Reject(context.Background(), []string{approved, pending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)
	assert.Equal(t, domain.StatusApproved, loadSubmission(t, db, approved).Status)
	assert.Equal(t, domain.StatusRejected, loadSubmission(t, db, pending).Status)
}

func TestReviewLifecycleToLive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
	id := submit(t, svc, validSubmitRequest())

	// Out of order transitions are no-ops.
	res, err := svc.MarkLive(context.Background(), []string{id})
	require.NoError(t, err)
	assert.Zero(t, res.Affected)

	_, err = svc.Approve(context.Background(), []string{id})
	require.NoError(t, err)

	res, err = svc.Apply(context.Background(), domain.ActionReadyForLive, []string{id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)
	assert.Equal(t, domain.StatusReadyToLive, loadSubmission(t, db, id).Status)
	assert.Equal(t, []notificationdomain.Kind{
		notificationdomain.KindSubmissionReceived,
		notificationdomain.KindPaymentRequest,
	}, outboxKinds(t, db))

	res, err = svc.Apply(context.Background(), domain.ActionMarkLive, []string{id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)
	assert.Equal(t, domain.StatusLive, loadSubmission(t, db, id).Status)

	_, err = svc.Apply(context.Background(), "publish", []string{id})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListFiltersByStatusNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)

	first := submit(t, svc, validSubmitRequest())
	clk.Advance(time.Minute)
	second := submit(t, svc, validSubmitRequest())
	clk.Advance(time.Minute)
	rejected := submit(t, svc, validSubmitRequest())
	_, err := svc.Reject(context.Background(), []string{rejected})
	require.NoError(t, err)

	res, err := svc.List(context.Background(), domain.ListRequest{ListQuery: option.ListQuery{Filters: map[string]string{"status": "pending"}}})
	require.NoError(t, err)
	require.Len(t, res.Submissions, 2)
	assert.Equal(t, second, res.Submissions[0].ID)
	assert.Equal(t, first, res.Submissions[1].ID)
	assert.EqualValues(t, 2, res.Pagination.Total)

	res, err = svc.List(context.Background(), domain.ListRequest{Pagination: pagination.Pagination{Page: 1, PerPage: 1}})
	require.NoError(t, err)
	require.Len(t, res.Submissions, 1)
	assert.Equal(t, rejected, res.Submissions[0].ID)
	assert.True(t, res.Pagination.HasNext)

	_, err = svc.List(context.Background(), domain.ListRequest{ListQuery: option.ListQuery{Filters: map[string]string{"status": "archived"}}})
	_, ok := validation.As(err)
	assert.True(t, ok)
}

func TestListAppliesDeclaredSearchFiltersAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)

	req := validSubmitRequest()
	req.ToolName = "Zeta Notes"
	req.ToolCategory = "Productivity"
	zeta := submit(t, svc, req)
	clk.Advance(time.Minute)

	req = validSubmitRequest()
	req.ToolName = "Beta Notes"
	req.ContactEmail = "owner@notes.example.com"
	beta := submit(t, svc, req)
	clk.Advance(time.Minute)

	req = validSubmitRequest()
	req.ToolName = "Painter"
	submit(t, svc, req)

	res, err := svc.List(context.Background(), domain.ListRequest{ListQuery: option.ListQuery{
		Search:       "NOTES",
		SearchFields: []string{"tool_name"},
		Ordering:     "tool_name",
	}})
	require.NoError(t, err)
	require.Len(t, res.Submissions, 2)
	assert.Equal(t, beta, res.Submissions[0].ID)
	assert.Equal(t, zeta, res.Submissions[1].ID)

	res, err = svc.List(context.Background(), domain.ListRequest{ListQuery: option.ListQuery{
		Filters:  map[string]string{"tool_category": "Productivity", "admin_notes": "x"},
		Ordering: "-submission_date",
	}})
	require.NoError(t, err)
	require.Len(t, res.Submissions, 1)
	assert.Equal(t, zeta, res.Submissions[0].ID)
	assert.EqualValues(t, 1, res.Pagination.Total)

	res, err = svc.List(context.Background(), domain.ListRequest{ListQuery: option.ListQuery{
		Search:       "notes.example",
		SearchFields: []string{"tool_name"},
	}})
	require.NoError(t, err)
	assert.Empty(t, res.Submissions)
}

func TestNewReferenceNumber(t *testing.T) {
	now := time.Date(2026, 12, 31, 23, 59, 58, 0, time.UTC)

	ref, err := NewReferenceNumber("", now)
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)
	assert.Contains(t, ref, "-20261231235958-")

	ref, err = NewReferenceNumber(" ads ", now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ADS-20261231235958-[A-Z0-9]{8}$`), ref)
}
