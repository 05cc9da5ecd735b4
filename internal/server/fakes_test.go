package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/obtain/internal/audit/domain"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/authorization"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/config"
	contactdomain "github.com/smallbiznis/obtain/internal/contact/domain"
	obscontext "github.com/smallbiznis/obtain/internal/observability/context"
	paymentdomain "github.com/smallbiznis/obtain/internal/payment/domain"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	"github.com/smallbiznis/obtain/internal/providers/pdf"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	removaldomain "github.com/smallbiznis/obtain/internal/removal/domain"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	superuserKey = "ob_live_key_super"
	staffKey     = "ob_live_key_staff"
)

type fakeAuthService struct {
	principals map[string]*authdomain.Principal
	deleted    []string
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{
		principals: map[string]*authdomain.Principal{
			superuserKey: {UserID: 1, Email: "root@obtain.ai", Role: authdomain.RoleSuperuser, KeyID: "key_1"},
			staffKey:     {UserID: 2, Email: "staff@obtain.ai", Role: authdomain.RoleStaff, KeyID: "key_2"},
		},
	}
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.UserView, error) {
	return &authdomain.UserView{ID: "3", Email: req.Email, Role: req.Role}, nil
}

func (f *fakeAuthService) IssueAPIKey(ctx context.Context, userID string, name string) (*authdomain.SecretResponse, error) {
	return &authdomain.SecretResponse{KeyID: "key_3", APIKey: "ob_live_key_new"}, nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawKey string) (*authdomain.Principal, error) {
	principal, ok := f.principals[rawKey]
	if !ok {
		return nil, authdomain.ErrUnauthorized
	}
	return principal, nil
}

func (f *fakeAuthService) DeleteUser(ctx context.Context, userID string) (*authdomain.DeleteResult, error) {
	f.deleted = append(f.deleted, userID)
	if userID == "404" {
		return nil, authdomain.ErrUserNotFound
	}
	return &authdomain.DeleteResult{DetachedTools: 2, DetachedSubmissions: 1}, nil
}

type fakeCatalogService struct {
	tools []catalogdomain.ToolView
	seed  error
}

func (f *fakeCatalogService) List(ctx context.Context, req catalogdomain.ListRequest) (*catalogdomain.ListResponse, error) {
	return &catalogdomain.ListResponse{
		Tools:      f.tools,
		Pagination: pagination.BuildPageInfo(req.Pagination.Normalize(), int64(len(f.tools))),
	}, nil
}

func (f *fakeCatalogService) Get(ctx context.Context, id string) (*catalogdomain.ToolView, error) {
	for i := range f.tools {
		if f.tools[i].ID == id {
			return &f.tools[i], nil
		}
	}
	return nil, catalogdomain.ErrNotFound
}

func (f *fakeCatalogService) Categories(ctx context.Context) ([]string, error) {
	return []string{"Coding", "Writing"}, nil
}

func (f *fakeCatalogService) Stats(ctx context.Context) (*catalogdomain.Stats, error) {
	return &catalogdomain.Stats{TotalTools: int64(len(f.tools)), TotalCategories: 2, FreeTools: 1}, nil
}

func (f *fakeCatalogService) SetActive(ctx context.Context, id string, active bool) (*catalogdomain.ToolView, error) {
	tool, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tool.IsActive = active
	return tool, nil
}

func (f *fakeCatalogService) SeedSamples(ctx context.Context) (int, error) {
	if f.seed != nil {
		return 0, f.seed
	}
	return 3, nil
}

type mockSubmissionService struct {
	mock.Mock
}

func (m *mockSubmissionService) Submit(ctx context.Context, req submissiondomain.SubmitRequest) (*submissiondomain.SubmitResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*submissiondomain.SubmitResult)
	return res, args.Error(1)
}

func (m *mockSubmissionService) Approve(ctx context.Context, ids []string) (*submissiondomain.ReviewResult, error) {
	args := m.Called(ctx, ids)
	res, _ := args.Get(0).(*submissiondomain.ReviewResult)
	return res, args.Error(1)
}

func (m *mockSubmissionService) Reject(ctx context.Context, ids []string) (*submissiondomain.ReviewResult, error) {
	return m.Apply(ctx, submissiondomain.ActionReject, ids)
}

func (m *mockSubmissionService) MarkReadyForLive(ctx context.Context, ids []string) (*submissiondomain.ReviewResult, error) {
	return m.Apply(ctx, submissiondomain.ActionReadyForLive, ids)
}

func (m *mockSubmissionService) MarkLive(ctx context.Context, ids []string) (*submissiondomain.ReviewResult, error) {
	return m.Apply(ctx, submissiondomain.ActionMarkLive, ids)
}

func (m *mockSubmissionService) Apply(ctx context.Context, action submissiondomain.Action, ids []string) (*submissiondomain.ReviewResult, error) {
	args := m.Called(ctx, action, ids)
	res, _ := args.Get(0).(*submissiondomain.ReviewResult)
	return res, args.Error(1)
}

func (m *mockSubmissionService) List(ctx context.Context, req submissiondomain.ListRequest) (*submissiondomain.ListResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*submissiondomain.ListResponse)
	return res, args.Error(1)
}

type fakeRemovalService struct {
	applied []removaldomain.Action
	listed  []removaldomain.ListRequest
}

func (f *fakeRemovalService) Request(ctx context.Context, input removaldomain.RequestInput) (*removaldomain.RequestResult, error) {
	v := &validation.Errors{}
	v.Required("toolNameRemove", input.ToolName)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &removaldomain.RequestResult{RequestID: "77"}, nil
}

func (f *fakeRemovalService) Verify(ctx context.Context, ids []string) (*removaldomain.ReviewResult, error) {
	return f.Apply(ctx, removaldomain.ActionVerify, ids)
}

func (f *fakeRemovalService) Complete(ctx context.Context, ids []string) (*removaldomain.ReviewResult, error) {
	return f.Apply(ctx, removaldomain.ActionComplete, ids)
}

func (f *fakeRemovalService) Reject(ctx context.Context, ids []string) (*removaldomain.ReviewResult, error) {
	return f.Apply(ctx, removaldomain.ActionReject, ids)
}

func (f *fakeRemovalService) Apply(ctx context.Context, action removaldomain.Action, ids []string) (*removaldomain.ReviewResult, error) {
	f.applied = append(f.applied, action)
	return &removaldomain.ReviewResult{Affected: int64(len(ids))}, nil
}

func (f *fakeRemovalService) List(ctx context.Context, req removaldomain.ListRequest) (*removaldomain.ListResponse, error) {
	f.listed = append(f.listed, req)
	return &removaldomain.ListResponse{RemovalRequests: []removaldomain.RequestView{}}, nil
}

type fakeContactService struct{}

func (fakeContactService) Submit(ctx context.Context, req contactdomain.SubmitRequest) (*contactdomain.SubmitResult, error) {
	return &contactdomain.SubmitResult{SubmissionID: "55"}, nil
}

func (fakeContactService) List(ctx context.Context, req contactdomain.ListRequest) (*contactdomain.ListResponse, error) {
	return &contactdomain.ListResponse{Contacts: []contactdomain.MessageView{}}, nil
}

type fakePricingService struct{}

func (fakePricingService) ListPrices(ctx context.Context, currencyCode string, planType pricingdomain.PlanType) ([]pricingdomain.PriceView, error) {
	if currencyCode == "" {
		return nil, validation.New("currency", "missing_field", "Missing required field: currency")
	}
	view := pricingdomain.PriceView{Code: currencyCode, PlanName: "Verified", Symbol: "$", Price: 19, FormattedPrice: "$19"}
	if planType == pricingdomain.PlanTypeAdvertisement {
		days := 7
		view.PlanName = "Weekly Spotlight"
		view.PlanDuration = &days
	}
	return []pricingdomain.PriceView{view}, nil
}

func (fakePricingService) CreatePlan(ctx context.Context, req pricingdomain.CreatePlanRequest) (*pricingdomain.PlanView, error) {
	return &pricingdomain.PlanView{ID: "9", Name: req.Name, Type: req.Type, IsActive: true}, nil
}

func (fakePricingService) CreatePrice(ctx context.Context, req pricingdomain.CreatePriceRequest) (*pricingdomain.PlanPriceView, error) {
	return nil, pricingdomain.ErrConflict
}

func (fakePricingService) GetPrice(ctx context.Context, id string) (*pricingdomain.PriceRow, error) {
	return nil, pricingdomain.ErrNotFound
}

type fakeReferenceService struct{}

func (fakeReferenceService) ListCurrencies(ctx context.Context) ([]referencedomain.CurrencyView, error) {
	return []referencedomain.CurrencyView{{Code: "INR", Name: "Indian Rupee", Symbol: "₹", Flag: "🇮🇳"}}, nil
}

type fakePaymentService struct{}

func (fakePaymentService) Record(ctx context.Context, req paymentdomain.RecordRequest) (*paymentdomain.PaymentView, error) {
	return &paymentdomain.PaymentView{ID: "1", SubmissionID: req.SubmissionID, Status: "pending"}, nil
}

func (fakePaymentService) Transition(ctx context.Context, id string, req paymentdomain.TransitionRequest) (*paymentdomain.PaymentView, error) {
	return nil, paymentdomain.ErrInvalidTransition
}

func (fakePaymentService) Get(ctx context.Context, id string) (*paymentdomain.PaymentView, error) {
	switch id {
	case "1":
		gatewayID := "pay_1"
		return &paymentdomain.PaymentView{ID: "1", SubmissionID: "5", Currency: "USD", AmountCents: 1500, Status: "success", GatewayPaymentID: &gatewayID}, nil
	case "2":
		return &paymentdomain.PaymentView{ID: "2", SubmissionID: "5", Currency: "USD", AmountCents: 1500, Status: "pending"}, nil
	default:
		return nil, paymentdomain.ErrNotFound
	}
}

type fakeReceiptProvider struct {
	rendered []pdf.ReceiptData
}

func (f *fakeReceiptProvider) GenerateReceipt(ctx context.Context, data pdf.ReceiptData) ([]byte, error) {
	f.rendered = append(f.rendered, data)
	return []byte("%PDF-1.3 fake"), nil
}

func (fakePaymentService) ActiveAdvertisement(ctx context.Context, toolID string) (*paymentdomain.AdvertisementStatus, error) {
	return &paymentdomain.AdvertisementStatus{Active: false}, nil
}

type recordedAudit struct {
	entry     auditdomain.Entry
	actorType string
	actorID   string
}

type fakeAuditService struct {
	records []recordedAudit
}

func (f *fakeAuditService) Record(ctx context.Context, entry auditdomain.Entry) error {
	actorType, actorID := obscontext.ActorFromContext(ctx)
	f.records = append(f.records, recordedAudit{entry: entry, actorType: actorType, actorID: actorID})
	return nil
}

func (f *fakeAuditService) List(ctx context.Context, req auditdomain.ListRequest) (*auditdomain.ListResponse, error) {
	page := req.Pagination.Normalize()
	logs := make([]auditdomain.AuditLogView, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		logs = append(logs, auditdomain.AuditLogView{
			ActorType:  f.records[i].actorType,
			Action:     f.records[i].entry.Action,
			TargetType: f.records[i].entry.TargetType,
		})
	}
	return &auditdomain.ListResponse{
		AuditLogs:  logs,
		Pagination: pagination.BuildPageInfo(page, int64(len(logs))),
	}, nil
}

type testServer struct {
	router      *gin.Engine
	auth        *fakeAuthService
	catalog     *fakeCatalogService
	submissions *mockSubmissionService
	removals    *fakeRemovalService
	audit       *fakeAuditService
	receipts    *fakeReceiptProvider
}

func newTestAuthorization(t *testing.T) authorization.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	return authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		router: gin.New(),
		auth:   newFakeAuthService(),
		catalog: &fakeCatalogService{tools: []catalogdomain.ToolView{
			{ID: "10", Slug: "acme", Name: "Acme", Category: "Writing", Pricing: "free", IsActive: true},
		}},
		submissions: &mockSubmissionService{},
		removals:    &fakeRemovalService{},
		audit:       &fakeAuditService{},
		receipts:    &fakeReceiptProvider{},
	}
	ts.router.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:           ts.router,
		Cfg:           config.Config{Environment: "test"},
		Site:          config.DefaultSiteConfig(),
		Authsvc:       ts.auth,
		AuthzSvc:      newTestAuthorization(t),
		CatalogSvc:    ts.catalog,
		SubmissionSvc: ts.submissions,
		RemovalSvc:    ts.removals,
		ContactSvc:    fakeContactService{},
		PricingSvc:    fakePricingService{},
		ReferenceSvc:  fakeReferenceService{},
		PaymentSvc:    fakePaymentService{},
		AuditSvc:      ts.audit,
		Receipts:      ts.receipts,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, apiKey string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp := httptest.NewRecorder()
	ts.router.ServeHTTP(resp, req)

	var payload map[string]any
	if resp.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload), resp.Body.String())
	}
	return resp, payload
}
