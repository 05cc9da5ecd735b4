package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/obtain/pkg/db/option"
	"github.com/smallbiznis/obtain/pkg/db/pagination"
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	Approve(ctx context.Context, ids []string) (*ReviewResult, error)
	Reject(ctx context.Context, ids []string) (*ReviewResult, error)
	MarkReadyForLive(ctx context.Context, ids []string) (*ReviewResult, error)
	MarkLive(ctx context.Context, ids []string) (*ReviewResult, error)
	Apply(ctx context.Context, action Action, ids []string) (*ReviewResult, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

// Action names a bulk review action as exposed to admins.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionReadyForLive Action = "ready_for_live"
	ActionMarkLive     Action = "mark_live"
)

func ActionValues() []string {
	return []string{string(ActionApprove), string(ActionReject), string(ActionReadyForLive), string(ActionMarkLive)}
}

// SubmitRequest carries the public submission form as posted by the site.
type SubmitRequest struct {
	ToolName                string `json:"toolName"`
	ToolWebsite             string `json:"toolWebsite"`
	ToolCategory            string `json:"toolCategory"`
	ToolPricing             string `json:"toolPricing"`
	ToolDescription         string `json:"toolDescription"`
	ToolDetailedDescription string `json:"toolDetailedDescription"`
	ToolFeatures            string `json:"toolFeatures"`
	ToolTags                string `json:"toolTags"`
	ExtraLink1              string `json:"ExtraLink1"`
	ExtraLink2              string `json:"ExtraLink2"`
	ExtraLink3              string `json:"ExtraLink3"`
	ListingType             string `json:"listingType"`
	ContactName             string `json:"contactName"`
	ContactEmail            string `json:"contactEmail"`
	ContactCompany          string `json:"contactCompany"`
	UserTimezone            string `json:"user_timezone"`
	OwnerID                 *int64 `json:"-"`
}

type SubmitResult struct {
	SubmissionID    string `json:"submission_id"`
	ReferenceNumber string `json:"tool_ref_num"`
}

// ReviewResult reports how many submissions changed state and, for approvals,
// the tools created.
type ReviewResult struct {
	Affected int64    `json:"affected"`
	ToolIDs  []string `json:"tool_ids"`
}

// ListRequest carries the admin list query. Filters are keyed by the public
// field names of the submissions entity.
type ListRequest struct {
	option.ListQuery
	pagination.Pagination
}

type ListResponse struct {
	Submissions []SubmissionView    `json:"submissions"`
	Pagination  pagination.PageInfo `json:"pagination"`
}

type SubmissionView struct {
	ID                      string    `json:"id"`
	ReferenceNumber         string    `json:"tool_ref_num"`
	ToolName                string    `json:"tool_name"`
	ToolWebsite             string    `json:"tool_website"`
	ToolCategory            string    `json:"tool_category"`
	ToolPricing             string    `json:"tool_pricing"`
	ToolDescription         string    `json:"tool_description"`
	ToolDetailedDescription *string   `json:"tool_detailed_description"`
	ToolFeatures            []string  `json:"tool_features"`
	ToolTags                []string  `json:"tool_tags"`
	ExtraLinks              []string  `json:"extra_links"`
	ListingType             string    `json:"listing_type"`
	ContactName             string    `json:"contact_name"`
	ContactEmail            string    `json:"contact_email"`
	ContactCompany          *string   `json:"contact_company"`
	UserTimezone            *string   `json:"user_timezone"`
	Status                  string    `json:"status"`
	AdminNotes              *string   `json:"admin_notes"`
	SubmissionDate          time.Time `json:"submission_date"`
}

var (
	ErrNotFound      = errors.New("submission_not_found")
	ErrInvalidID     = errors.New("invalid_submission_id")
	ErrInvalidAction = errors.New("invalid_review_action")
	ErrNoIDs         = errors.New("no_submission_ids")
	ErrConflict      = errors.New("reference_number_conflict")
)
