package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/obtain/internal/config"
	contactdomain "github.com/smallbiznis/obtain/internal/contact/domain"
)

func (s *Server) SubmitContact(c *gin.Context) {
	var req contactdomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contactSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Thanks for reaching out, we will get back to you soon",
		"submission_id": resp.SubmissionID,
	})
}

func (s *Server) ListContacts(c *gin.Context) {
	var req contactdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ListQuery = s.listQuery(c, config.EntityContact)

	resp, err := s.contactSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"contacts":   resp.Contacts,
		"pagination": resp.Pagination,
	})
}
