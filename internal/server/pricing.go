package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
)

func (s *Server) ListListingPrices(c *gin.Context) {
	s.listPrices(c, pricingdomain.PlanTypeListing)
}

func (s *Server) ListAdvertisePrices(c *gin.Context) {
	s.listPrices(c, pricingdomain.PlanTypeAdvertisement)
}

func (s *Server) listPrices(c *gin.Context, planType pricingdomain.PlanType) {
	prices, err := s.pricingSvc.ListPrices(c.Request.Context(), c.Query("currency"), planType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prices": prices})
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req pricingdomain.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	plan, err := s.pricingSvc.CreatePlan(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "plan.create", "plan", plan.ID, map[string]any{
		"name": plan.Name,
		"type": plan.Type,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "plan": plan})
}

func (s *Server) CreatePlanPrice(c *gin.Context) {
	var req pricingdomain.CreatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	price, err := s.pricingSvc.CreatePrice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "plan.price_create", "plan_price", price.ID, map[string]any{
		"plan_id":  req.PlanID,
		"currency": req.Currency,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "plan_price": price})
}
