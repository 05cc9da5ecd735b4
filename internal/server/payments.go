package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/obtain/internal/payment/domain"
	"github.com/smallbiznis/obtain/internal/providers/pdf"
)

func (s *Server) RecordPayment(c *gin.Context) {
	var req paymentdomain.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.Record(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "payment.record", "payment", payment.ID, map[string]any{
		"submission_id":    req.SubmissionID,
		"plan_price_id":    req.PlanPriceID,
		"gateway_order_id": req.GatewayOrderID,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "payment": payment})
}

func (s *Server) TransitionPayment(c *gin.Context) {
	var req paymentdomain.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.Transition(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, "payment.transition", "payment", payment.ID, map[string]any{
		"status":            payment.Status,
		"gateway_signature": req.GatewaySignature,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}

// GetPaymentReceipt renders a PDF receipt for a successful payment.
func (s *Server) GetPaymentReceipt(c *gin.Context) {
	if s.receipts == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	payment, err := s.paymentSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if payment.Status != string(paymentdomain.StatusSuccess) {
		AbortWithError(c, paymentdomain.ErrNotSettled)
		return
	}

	data := pdf.ReceiptData{
		SiteName:     s.site.Header,
		PaymentID:    payment.ID,
		SubmissionID: payment.SubmissionID,
		PlanType:     payment.PlanType,
		Currency:     payment.Currency,
		AmountCents:  payment.AmountCents,
		PaidAt:       payment.UpdatedAt,
		StartsAt:     payment.StartsAt,
		EndsAt:       payment.EndsAt,
	}
	if payment.GatewayPaymentID != nil {
		data.GatewayID = *payment.GatewayPaymentID
	}

	doc, err := s.receipts.GenerateReceipt(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+payment.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
