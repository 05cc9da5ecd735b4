package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/obtain/internal/authorization"
	"github.com/smallbiznis/obtain/internal/config"
	removaldomain "github.com/smallbiznis/obtain/internal/removal/domain"
)

var removalActionPermissions = map[removaldomain.Action]string{
	removaldomain.ActionVerify:   authorization.ActionRemovalRequestVerify,
	removaldomain.ActionComplete: authorization.ActionRemovalRequestComplete,
	removaldomain.ActionReject:   authorization.ActionRemovalRequestReject,
}

func (s *Server) RequestRemoval(c *gin.Context) {
	var req removaldomain.RequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.removalSvc.Request(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Tool removal request submitted successfully",
		"request_id": resp.RequestID,
	})
}

func (s *Server) ListRemovalRequests(c *gin.Context) {
	var req removaldomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ListQuery = s.listQuery(c, config.EntityRemovalRequest)

	resp, err := s.removalSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"removal_requests": resp.RemovalRequests,
		"pagination":       resp.Pagination,
	})
}

func (s *Server) RemovalRequestActions(c *gin.Context) {
	var req reviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	action := removaldomain.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	permission, ok := removalActionPermissions[action]
	if !ok {
		AbortWithError(c, removaldomain.ErrInvalidAction)
		return
	}
	if err := s.authorizeWithContext(c, authorization.ObjectRemovalRequest, permission); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.removalSvc.Apply(c.Request.Context(), action, req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "removal_request."+string(action), "removal_request", "", map[string]any{
		"ids":      req.IDs,
		"affected": resp.Affected,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"action":   string(action),
		"affected": resp.Affected,
	})
}
