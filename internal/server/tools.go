package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/internal/validation"
)

func (s *Server) ListTools(c *gin.Context) {
	var req catalogdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"tools":      resp.Tools,
		"pagination": resp.Pagination,
	})
}

func (s *Server) GetTool(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	tool, err := s.catalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tool": tool})
}

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.catalogSvc.Categories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.catalogSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

type updateToolRequest struct {
	IsActive *bool `json:"is_active"`
}

func (s *Server) UpdateTool(c *gin.Context) {
	var req updateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.IsActive == nil {
		AbortWithError(c, validation.New("is_active", "missing_field", "Missing required field: is_active"))
		return
	}

	tool, err := s.catalogSvc.SetActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), *req.IsActive)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "tool.update", "tool", tool.ID, map[string]any{
		"is_active": *req.IsActive,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "tool": tool})
}

func (s *Server) InitSampleData(c *gin.Context) {
	created, err := s.catalogSvc.SeedSamples(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "tool.seed", "tool", "", map[string]any{"created": created})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Created %d sample tools", created),
		"created": created,
	})
}

func (s *Server) GetToolAdvertisement(c *gin.Context) {
	status, err := s.paymentSvc.ActiveAdvertisement(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "advertisement": status})
}
