package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/obtain/internal/auth/domain"
	"github.com/smallbiznis/obtain/internal/authorization"
	catalogdomain "github.com/smallbiznis/obtain/internal/catalog/domain"
	contactdomain "github.com/smallbiznis/obtain/internal/contact/domain"
	paymentdomain "github.com/smallbiznis/obtain/internal/payment/domain"
	pricingdomain "github.com/smallbiznis/obtain/internal/pricing/domain"
	referencedomain "github.com/smallbiznis/obtain/internal/reference/domain"
	removaldomain "github.com/smallbiznis/obtain/internal/removal/domain"
	submissiondomain "github.com/smallbiznis/obtain/internal/submission/domain"
	"github.com/smallbiznis/obtain/internal/validation"
	"gorm.io/gorm"
)

// errorResponse is the failure half of the response envelope.
type errorResponse struct {
	Success bool                    `json:"success"`
	Error   string                  `json:"error"`
	Type    string                  `json:"type"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return validation.New("request", "invalid_request", "invalid request")
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, failure("internal_error", "internal server error")
	}

	if vErr, ok := validation.As(err); ok {
		payload := failure("validation_error", vErr.Error())
		payload.Errors = vErr.Errors
		return http.StatusBadRequest, payload
	}

	if isValidationError(err) {
		code := err.Error()
		payload := failure("validation_error", validationErrorMessage(code))
		payload.Errors = []validation.FieldError{{
			Field:   validationErrorField(code),
			Code:    code,
			Message: validationErrorMessage(code),
		}}
		return http.StatusBadRequest, payload
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, failure("unauthorized", "unauthorized")
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, failure("forbidden", "forbidden")
	case isConflictError(err):
		return http.StatusConflict, failure("conflict", err.Error())
	case isNotFoundError(err):
		return http.StatusNotFound, failure("not_found", err.Error())
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, failure("rate_limited", "too many requests")
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, failure("service_unavailable", "service unavailable")
	default:
		return http.StatusInternalServerError, failure("internal_error", "internal server error")
	}
}

func failure(kind, message string) errorResponse {
	return errorResponse{Success: false, Error: message, Type: kind}
}

// classifyErrorForLog feeds the request logger the same kind the client sees.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	if err == nil {
		return payload.Type, ""
	}
	return payload.Type, err.Error()
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, submissiondomain.ErrInvalidID),
		errors.Is(err, submissiondomain.ErrInvalidAction),
		errors.Is(err, submissiondomain.ErrNoIDs),
		errors.Is(err, removaldomain.ErrInvalidID),
		errors.Is(err, removaldomain.ErrInvalidAction),
		errors.Is(err, removaldomain.ErrNoIDs),
		errors.Is(err, pricingdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrPriceInactive),
		errors.Is(err, authdomain.ErrInvalidID),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, authdomain.ErrInvalidKeyName):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, submissiondomain.ErrConflict),
		errors.Is(err, catalogdomain.ErrSampleExists),
		errors.Is(err, pricingdomain.ErrConflict),
		errors.Is(err, pricingdomain.ErrPlanConflict),
		errors.Is(err, paymentdomain.ErrInvalidTransition),
		errors.Is(err, paymentdomain.ErrNotSettled):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, contactdomain.ErrNotFound),
		errors.Is(err, submissiondomain.ErrNotFound),
		errors.Is(err, removaldomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrPlanNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrSubmissionNotFound),
		errors.Is(err, paymentdomain.ErrToolNotFound),
		errors.Is(err, referencedomain.ErrCurrencyNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case code == paymentdomain.ErrPriceInactive.Error():
		return "plan_price_id"
	case strings.HasPrefix(code, "no_") && strings.HasSuffix(code, "_ids"):
		return "ids"
	case strings.HasSuffix(code, "_action"):
		return "action"
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch {
	case code == "invalid_request":
		return "invalid request"
	case code == paymentdomain.ErrPriceInactive.Error():
		return "plan price is not active"
	case strings.HasPrefix(code, "no_") && strings.HasSuffix(code, "_ids"):
		return "at least one id is required"
	case strings.HasSuffix(code, "_action"):
		return "unknown action"
	default:
		return "invalid value"
	}
}
