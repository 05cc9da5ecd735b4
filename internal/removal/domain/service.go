package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
)

type Service interface {
	Request(ctx context.Context, input RequestInput) (*RequestResult, error)
	Verify(ctx context.Context, ids []string) (*ReviewResult, error)
	Complete(ctx context.Context, ids []string) (*ReviewResult, error)
	Reject(ctx context.Context, ids []string) (*ReviewResult, error)
	Apply(ctx context.Context, action Action, ids []string) (*ReviewResult, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type Action string

const (
	ActionVerify   Action = "verify"
	ActionComplete Action = "complete"
	ActionReject   Action = "reject"
)

func ActionValues() []string {
	return []string{string(ActionVerify), string(ActionComplete), string(ActionReject)}
}

// RequestInput carries the public removal form.
type RequestInput struct {
	ToolName           string `json:"toolNameRemove"`
	ToolWebsite        string `json:"toolWebsiteRemove"`
	ToolReference      string `json:"toolIdRemove"`
	OwnerName          string `json:"ownerName"`
	OwnerEmail         string `json:"ownerEmail"`
	OwnerCompany       string `json:"ownerCompany"`
	VerificationMethod string `json:"verificationMethod"`
	RemovalReason      string `json:"removalReason"`
	AdditionalDetails  string `json:"additionalDetails"`
}

type RequestResult struct {
	RequestID string `json:"request_id"`
}

type ReviewResult struct {
	Affected int64 `json:"affected"`
}

type ListRequest struct {
	option.ListQuery
	pagination.Pagination
}

type ListResponse struct {
	RemovalRequests []RequestView       `json:"removal_requests"`
	Pagination      pagination.PageInfo `json:"pagination"`
}

type RequestView struct {
	ID                 string    `json:"id"`
	ToolName           string    `json:"tool_name"`
	ToolWebsite        string    `json:"tool_website"`
	ToolReference      *string   `json:"tool_id"`
	OwnerName          string    `json:"owner_name"`
	OwnerEmail         string    `json:"owner_email"`
	OwnerCompany       *string   `json:"owner_company"`
	VerificationMethod string    `json:"verification_method"`
	RemovalReason      string    `json:"removal_reason"`
	AdditionalDetails  *string   `json:"additional_details"`
	Status             string    `json:"status"`
	AdminNotes         *string   `json:"admin_notes"`
	RequestDate        time.Time `json:"request_date"`
}

var (
	ErrNotFound      = errors.New("removal_request_not_found")
	ErrInvalidID     = errors.New("invalid_removal_request_id")
	ErrInvalidAction = errors.New("invalid_removal_action")
	ErrNoIDs         = errors.New("no_removal_request_ids")
)
