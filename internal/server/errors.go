package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	journaldomain "github.com/tallybook/ledgerd/internal/journal/domain"
	paymentaccountdomain "github.com/tallybook/ledgerd/internal/paymentaccount/domain"
	reportingdomain "github.com/tallybook/ledgerd/internal/reporting/domain"
	tenantdomain "github.com/tallybook/ledgerd/internal/tenant/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware translates domain errors pushed onto the gin
// context into typed JSON failures.
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
	case isValidationError(err):
		return http.StatusBadRequest, payloadFor("validation_error", err)
	case isStateError(err):
		// The request was well formed but the ledger's rules forbid it.
		return http.StatusUnprocessableEntity, payloadFor("state_error", err)
	case isResolutionError(err):
		// A configuration gap, not a user mistake.
		return http.StatusConflict, payloadFor("resolution_error", err)
	case errors.Is(err, accountdomain.ErrDuplicateCode),
		errors.Is(err, accountdomain.ErrDuplicateSystemTag),
		errors.Is(err, paymentaccountdomain.ErrAlreadyRegistered),
		errors.Is(err, tenantdomain.ErrSlugTaken):
		return http.StatusConflict, payloadFor("conflict", err)
	case isNotFoundError(err):
		return http.StatusNotFound, payloadFor("not_found", err)
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func payloadFor(kind string, err error) errorPayload {
	return errorPayload{
		Type:    kind,
		Code:    err.Error(),
		Message: err.Error(),
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, accountdomain.ErrInvalidInput),
		errors.Is(err, accountdomain.ErrInvalidTenant),
		errors.Is(err, accountdomain.ErrInvalidParent),
		errors.Is(err, accountdomain.ErrInvalidControlFlag),
		errors.Is(err, journaldomain.ErrInvalidTenant),
		errors.Is(err, journaldomain.ErrInvalidDate),
		errors.Is(err, journaldomain.ErrTooFewLines),
		errors.Is(err, journaldomain.ErrInvalidLineAmounts),
		errors.Is(err, journaldomain.ErrUnbalancedJournal),
		errors.Is(err, paymentaccountdomain.ErrInvalidInput),
		errors.Is(err, paymentaccountdomain.ErrInvalidTenant),
		errors.Is(err, reportingdomain.ErrInvalidTenant),
		errors.Is(err, reportingdomain.ErrInvalidRange),
		errors.Is(err, reportingdomain.ErrInvalidCursor),
		errors.Is(err, tenantdomain.ErrInvalidName):
		return true
	default:
		return false
	}
}

func isStateError(err error) bool {
	switch {
	case errors.Is(err, journaldomain.ErrPostingToControlAccount),
		errors.Is(err, journaldomain.ErrPostingToInactiveAccount),
		errors.Is(err, journaldomain.ErrAlreadyVoided),
		errors.Is(err, journaldomain.ErrNotPosted),
		errors.Is(err, accountdomain.ErrAccountInUse),
		errors.Is(err, accountdomain.ErrAccountIsSystem),
		errors.Is(err, paymentaccountdomain.ErrAccountNotPaymentEligible):
		return true
	default:
		return false
	}
}

func isResolutionError(err error) bool {
	switch {
	case errors.Is(err, accountdomain.ErrSystemTagNotConfigured),
		errors.Is(err, accountdomain.ErrSystemTagAmbiguous):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, journaldomain.ErrNotFound),
		errors.Is(err, journaldomain.ErrAccountNotFound),
		errors.Is(err, paymentaccountdomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
