package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListCurrencies(c *gin.Context) {
	currencies, err := s.referenceSvc.ListCurrencies(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "currencies": currencies})
}

func (s *Server) GetSite(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "site": s.site})
}
