package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// DeleteUser removes an admin user. Tools and submissions they owned stay
// in place with no owner.
func (s *Server) DeleteUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	// Callers cannot delete themselves.
	if principal, ok := principalFromContext(c); ok && strconv.FormatInt(principal.UserID, 10) == id {
		AbortWithError(c, ErrConflict)
		return
	}

	resp, err := s.authsvc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "user.delete", "user", id, map[string]any{
		"detached_tools":       resp.DetachedTools,
		"detached_submissions": resp.DetachedSubmissions,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"detached_tools":       resp.DetachedTools,
		"detached_submissions": resp.DetachedSubmissions,
	})
}
