package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/warebox/warebox/internal/alternatives"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	pricingdomain "github.com/warebox/warebox/internal/pricing/domain"
	"github.com/warebox/warebox/internal/recommendation"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
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
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Code:    err.Error(),
			Message: "forbidden",
		}
	case errors.Is(err, reservationdomain.ErrBoxUnavailable):
		return http.StatusConflict, errorPayload{
			Type:    "unavailable",
			Code:    err.Error(),
			Message: "the box is not available for the requested window",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "validation error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, boxdomain.ErrForbidden),
		errors.Is(err, warehousedomain.ErrForbidden),
		errors.Is(err, reservationdomain.ErrForbidden),
		errors.Is(err, subscriptiondomain.ErrForbidden),
		errors.Is(err, usagelogdomain.ErrForbidden):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, boxdomain.ErrNotFound),
		errors.Is(err, boxdomain.ErrWarehouseNotFound),
		errors.Is(err, warehousedomain.ErrNotFound),
		errors.Is(err, reservationdomain.ErrNotFound),
		errors.Is(err, reservationdomain.ErrBoxNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, alternatives.ErrBoxNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	if errors.Is(err, ErrInvalidRequest) {
		return true
	}
	code := err.Error()
	if strings.HasPrefix(code, "invalid_") {
		return true
	}
	switch {
	case errors.Is(err, boxdomain.ErrInvalidWindow),
		errors.Is(err, pricingdomain.ErrInvalidWindow),
		errors.Is(err, pricingdomain.ErrInvalidPrice),
		errors.Is(err, reservationdomain.ErrInvalidWindow),
		errors.Is(err, reservationdomain.ErrTerminalState),
		errors.Is(err, reservationdomain.ErrNotExtension),
		errors.Is(err, reservationdomain.ErrWrongCode),
		errors.Is(err, subscriptiondomain.ErrNoCriteria),
		errors.Is(err, subscriptiondomain.ErrPartialWindow),
		errors.Is(err, subscriptiondomain.ErrInvalidWindow),
		errors.Is(err, alternatives.ErrInvalidWindow),
		errors.Is(err, recommendation.ErrInvalidClient):
		return true
	default:
		return false
	}
}
