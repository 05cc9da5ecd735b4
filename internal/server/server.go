package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/obtain/internal/audit"
	auditdomain "github.com/smallbiznis/obtain/internal/audit/domain"
	"github.com/smallbiznis/obtain/internal/auth"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/authorization"
	"github.com/smallbiznis/obtain/internal/catalog"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/config"
	"github.com/smallbiznis/obtain/internal/contact"
	contactdomain "github.com/smallbiznis/obtain/internal/contact/domain"
	"github.com/smallbiznis/obtain/internal/observability"
	obsmiddleware "github.com/smallbiznis/obtain/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/obtain/internal/observability/metrics"
	obstracing "github.com/smallbiznis/obtain/internal/observability/tracing"
	"github.com/smallbiznis/obtain/internal/payment"
	paymentdomain "github.com/smallbiznis/obtain/internal/payment/domain"
	"github.com/smallbiznis/obtain/internal/pricing"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	"github.com/smallbiznis/obtain/internal/providers/pdf"
	"github.com/smallbiznis/obtain/internal/ratelimit"
	"github.com/smallbiznis/obtain/internal/reference"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	"github.com/smallbiznis/obtain/internal/removal"
	removaldomain "github.com/smallbiznis/obtain/internal/removal/domain"
	"github.com/smallbiznis/obtain/internal/submission"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	authorization.Module,
	auth.Module,
	catalog.Module,
	contact.Module,
	payment.Module,
	pricing.Module,
	reference.Module,
	removal.Module,
	submission.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	site          config.SiteConfig
	authsvc       authdomain.Service
	authzSvc      authorization.Service
	catalogSvc    catalogdomain.Service
	submissionSvc submissiondomain.Service
	removalSvc    removaldomain.Service
	contactSvc    contactdomain.Service
	pricingSvc    pricingdomain.Service
	referenceSvc  referencedomain.Service
	paymentSvc    paymentdomain.Service
	auditSvc      auditdomain.Service
	receipts      pdf.Provider
	obsMetrics    *obsmetrics.Metrics
	writeLimiter  *ratelimit.PublicWriteLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Site          config.SiteConfig
	Authsvc       authdomain.Service
	AuthzSvc      authorization.Service
	CatalogSvc    catalogdomain.Service
	SubmissionSvc submissiondomain.Service
	RemovalSvc    removaldomain.Service
	ContactSvc    contactdomain.Service
	PricingSvc    pricingdomain.Service
	ReferenceSvc  referencedomain.Service
	PaymentSvc    paymentdomain.Service
	AuditSvc      auditdomain.Service           `optional:"true"`
	Receipts      pdf.Provider                  `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics           `optional:"true"`
	WriteLimiter  *ratelimit.PublicWriteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		site:          p.Site,
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		catalogSvc:    p.CatalogSvc,
		submissionSvc: p.SubmissionSvc,
		removalSvc:    p.RemovalSvc,
		contactSvc:    p.ContactSvc,
		pricingSvc:    p.PricingSvc,
		referenceSvc:  p.ReferenceSvc,
		paymentSvc:    p.PaymentSvc,
		auditSvc:      p.AuditSvc,
		receipts:      p.Receipts,
		obsMetrics:    p.ObsMetrics,
		writeLimiter:  p.WriteLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/tools", s.ListTools)
	api.GET("/tools/:id", s.GetTool)
	api.GET("/categories", s.ListCategories)
	api.GET("/stats", s.GetStats)

	// -------- Forms --------
	api.POST("/submit", s.PublicWriteRateLimit(), s.SubmitTool)
	api.POST("/remove", s.PublicWriteRateLimit(), s.RequestRemoval)
	api.POST("/contact", s.PublicWriteRateLimit(), s.SubmitContact)

	// -------- Pricing --------
	api.GET("/currencies", s.ListCurrencies)
	api.GET("/listing/prices", s.ListListingPrices)
	api.GET("/advertise/prices", s.ListAdvertisePrices)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	// --- global middlewares ---
	admin.Use(s.AdminRequired())

	admin.GET("/site", s.authorize(authorization.ObjectSite, authorization.ActionSiteView), s.GetSite)

	// Submissions. The bulk endpoint authorizes per action.
	admin.GET("/submissions", s.authorize(authorization.ObjectSubmission, authorization.ActionSubmissionView), s.ListSubmissions)
	admin.POST("/submissions/:id/approve", s.authorize(authorization.ObjectSubmission, authorization.ActionSubmissionApprove), s.ApproveSubmission)
	admin.POST("/submissions/actions", s.SubmissionActions)

	// Removal requests
	admin.GET("/removal-requests", s.authorize(authorization.ObjectRemovalRequest, authorization.ActionRemovalRequestView), s.ListRemovalRequests)
	admin.POST("/removal-requests/actions", s.RemovalRequestActions)

	// Tools
	admin.PATCH("/tools/:id", s.authorize(authorization.ObjectTool, authorization.ActionToolUpdate), s.UpdateTool)
	admin.GET("/tools/:id/advertisement", s.authorize(authorization.ObjectTool, authorization.ActionToolView), s.GetToolAdvertisement)
	admin.POST("/init-sample-data", s.authorize(authorization.ObjectTool, authorization.ActionToolSeed), s.InitSampleData)

	admin.GET("/contacts", s.authorize(authorization.ObjectContact, authorization.ActionContactView), s.ListContacts)

	// Pricing
	admin.POST("/plans", s.authorize(authorization.ObjectPlan, authorization.ActionPlanCreate), s.CreatePlan)
	admin.POST("/plan-prices", s.authorize(authorization.ObjectPlan, authorization.ActionPlanPriceCreate), s.CreatePlanPrice)

	// Payments
	admin.POST("/payments", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentRecord), s.RecordPayment)
	admin.POST("/payments/:id/transition", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentTransition), s.TransitionPayment)
	admin.GET("/payments/:id/receipt", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentView), s.GetPaymentReceipt)

	admin.DELETE("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUserDelete), s.DeleteUser)

	admin.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
