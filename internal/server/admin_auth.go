package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	obscontext "github.com/smallbiznis/obtain/internal/observability/context"
	"github.com/smallbiznis/obtain/internal/observability/logger"
	"go.uber.org/zap"
)

const contextPrincipalKey = "principal"

// AdminRequired authenticates admin requests with a Bearer API key. The
// caller's role comes from the owning user, never from the request.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if principal == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextPrincipalKey, principal)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), "user", strconv.FormatInt(principal.UserID, 10)))
		c.Next()
	}
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeWithContext(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeWithContext(c *gin.Context, object string, action string) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}

	err := s.authzSvc.Authorize(c.Request.Context(), principal.UserID, string(principal.Role), object, action)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("admin action denied",
			zap.Int64("user_id", principal.UserID),
			zap.String("role", string(principal.Role)),
			zap.String("action", action),
			zap.Error(err),
		)
	}
	return err
}

func principalFromContext(c *gin.Context) (*authdomain.Principal, bool) {
	raw, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := raw.(*authdomain.Principal)
	if !ok || principal == nil || principal.UserID == 0 {
		return nil, false
	}
	return principal, true
}
