package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/obtain/internal/authorization"
	"github.com/smallbiznis/obtain/internal/config"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
)

// reviewActionRequest is the bulk action body shared by the submission and
// removal request admin endpoints.
type reviewActionRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

var submissionActionPermissions = map[submissiondomain.Action]string{
	submissiondomain.ActionApprove:      authorization.ActionSubmissionApprove,
	submissiondomain.ActionReject:       authorization.ActionSubmissionReject,
	submissiondomain.ActionReadyForLive: authorization.ActionSubmissionReadyForLive,
	submissiondomain.ActionMarkLive:     authorization.ActionSubmissionMarkLive,
}

func (s *Server) SubmitTool(c *gin.Context) {
	var req submissiondomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.submissionSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Tool submission received successfully",
		"submission_id": resp.SubmissionID,
		"tool_ref_num":  resp.ReferenceNumber,
	})
}

func (s *Server) ListSubmissions(c *gin.Context) {
	var req submissiondomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ListQuery = s.listQuery(c, config.EntitySubmission)

	resp, err := s.submissionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": resp.Submissions,
		"pagination":  resp.Pagination,
	})
}

func (s *Server) ApproveSubmission(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.submissionSvc.Approve(c.Request.Context(), []string{id})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "submission.approve", "submission", id, map[string]any{
		"tool_ids": resp.ToolIDs,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"affected": resp.Affected,
		"tool_ids": resp.ToolIDs,
	})
}

// SubmissionActions runs a bulk review action. Staff may only move approved
// submissions to ready_to_live; the policy decides per action.
func (s *Server) SubmissionActions(c *gin.Context) {
	var req reviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	action := submissiondomain.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	permission, ok := submissionActionPermissions[action]
	if !ok {
		AbortWithError(c, submissiondomain.ErrInvalidAction)
		return
	}
	if err := s.authorizeWithContext(c, authorization.ObjectSubmission, permission); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.submissionSvc.Apply(c.Request.Context(), action, req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "submission."+string(action), "submission", "", map[string]any{
		"ids":      req.IDs,
		"affected": resp.Affected,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"action":   string(action),
		"affected": resp.Affected,
		"tool_ids": resp.ToolIDs,
	})
}
