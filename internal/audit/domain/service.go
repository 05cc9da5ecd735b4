package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/obtain/pkg/db/pagination"
)

type Service interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

// Entry is one admin write to record. Actor fields left blank are taken from
// the request context.
type Entry struct {
	ActorType  ActorType
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
}

type ListRequest struct {
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	ActorID    string `form:"actor_id"`
	pagination.Pagination
}

type ListResponse struct {
	AuditLogs  []AuditLogView      `json:"audit_logs"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type AuditLogView struct {
	ID         string         `json:"id"`
	ActorType  string         `json:"actor_type"`
	ActorID    *string        `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   *string        `json:"target_id"`
	Metadata   map[string]any `json:"metadata"`
	IPAddress  *string        `json:"ip_address"`
	CreatedAt  time.Time      `json:"created_at"`
}

var ErrInvalidAction = errors.New("invalid_audit_action")
