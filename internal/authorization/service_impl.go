package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectSite           = "site"
	ObjectSubmission     = "submission"
	ObjectRemovalRequest = "removal_request"
	ObjectTool           = "tool"
	ObjectContact        = "contact"
	ObjectPlan           = "plan"
	ObjectPayment        = "payment"
	ObjectUser           = "user"
	ObjectAuditLog       = "audit_log"
)

const (
	ActionSiteView = "site.view"

	ActionSubmissionView         = "submission.view"
	ActionSubmissionApprove      = "submission.approve"
	ActionSubmissionReject       = "submission.reject"
	ActionSubmissionReadyForLive = "submission.ready_for_live"
	ActionSubmissionMarkLive     = "submission.mark_live"

	ActionRemovalRequestView     = "removal_request.view"
	ActionRemovalRequestVerify   = "removal_request.verify"
	ActionRemovalRequestComplete = "removal_request.complete"
	ActionRemovalRequestReject   = "removal_request.reject"

	ActionToolView   = "tool.view"
	ActionToolUpdate = "tool.update"
	ActionToolSeed   = "tool.seed"

	ActionContactView = "contact.view"

	ActionPlanCreate      = "plan.create"
	ActionPlanPriceCreate = "plan.price_create"

	ActionPaymentRecord     = "payment.record"
	ActionPaymentTransition = "payment.transition"
	ActionPaymentView       = "payment.view"

	ActionUserDelete = "user.delete"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID int64, role string, object string, action string) error {
	if userID <= 0 {
		return ErrInvalidActor
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := fmt.Sprintf("user:%d", userID)
	roleName := fmt.Sprintf("role:%s", role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("authorization denied",
			zap.String("subject", subject),
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per subject so a role change on
// the user row takes effect on the next request.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Staff: read access plus moving approved submissions towards payment.
		{"role:staff", ObjectSite, ActionSiteView},
		{"role:staff", ObjectSubmission, ActionSubmissionView},
		{"role:staff", ObjectSubmission, ActionSubmissionReadyForLive},
		{"role:staff", ObjectRemovalRequest, ActionRemovalRequestView},
		{"role:staff", ObjectContact, ActionContactView},
		{"role:staff", ObjectTool, ActionToolView},

		// Superuser permissions
		{"role:superuser", ObjectSite, ActionSiteView},
		{"role:superuser", ObjectSubmission, ActionSubmissionView},
		{"role:superuser", ObjectSubmission, ActionSubmissionApprove},
		{"role:superuser", ObjectSubmission, ActionSubmissionReject},
		{"role:superuser", ObjectSubmission, ActionSubmissionReadyForLive},
		{"role:superuser", ObjectSubmission, ActionSubmissionMarkLive},

		{"role:superuser", ObjectRemovalRequest, ActionRemovalRequestView},
		{"role:superuser", ObjectRemovalRequest, ActionRemovalRequestVerify},
		{"role:superuser", ObjectRemovalRequest, ActionRemovalRequestComplete},
		{"role:superuser", ObjectRemovalRequest, ActionRemovalRequestReject},

		{"role:superuser", ObjectTool, ActionToolView},
		{"role:superuser", ObjectTool, ActionToolUpdate},
		{"role:superuser", ObjectTool, ActionToolSeed},

		{"role:superuser", ObjectContact, ActionContactView},

		{"role:superuser", ObjectPlan, ActionPlanCreate},
		{"role:superuser", ObjectPlan, ActionPlanPriceCreate},

		{"role:superuser", ObjectPayment, ActionPaymentRecord},
		{"role:superuser", ObjectPayment, ActionPaymentTransition},
		{"role:superuser", ObjectPayment, ActionPaymentView},

		{"role:superuser", ObjectUser, ActionUserDelete},
		{"role:superuser", ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
