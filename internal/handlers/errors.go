package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnbalancedEntry),
		errors.Is(err, apperrors.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrEntryNotPosted),
		errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrCycle),
		errors.Is(err, apperrors.ErrHasChildren),
		errors.Is(err, apperrors.ErrReferencedByLedger),
		errors.Is(err, apperrors.ErrPostedVoucherImmutable),
		errors.Is(err, apperrors.ErrAlreadyReconciled),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInUse),
		errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// detailsFor exposes the data carried by typed errors.
func detailsFor(err error) map[string]any {
	var (
		unbalanced *apperrors.UnbalancedEntryError
		funds      *apperrors.InsufficientFundsError
		validation *apperrors.ValidationError
		children   *apperrors.HasChildrenError
		dupCode    *apperrors.DuplicateCodeError
	)
	switch {
	case errors.As(err, &unbalanced):
		return map[string]any{
			"debitTotal":  unbalanced.DebitTotal.StringFixed(2),
			"creditTotal": unbalanced.CreditTotal.StringFixed(2),
		}
	case errors.As(err, &funds):
		return map[string]any{
			"bankAccountID": funds.BankAccountID,
			"available":     funds.Available.StringFixed(2),
			"required":      funds.Required.StringFixed(2),
		}
	case errors.As(err, &validation):
		if validation.Field == "" {
			return nil
		}
		return map[string]any{"field": validation.Field}
	case errors.As(err, &children):
		return map[string]any{"childCount": children.ChildCount}
	case errors.As(err, &dupCode):
		return map[string]any{"code": dupCode.Code}
	}
	return nil
}

// handleServiceError writes the response for an error returned by a service.
// Internal errors are logged and hidden behind fallback.
func handleServiceError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: fallback})
		return
	}
	logger.Warn(fallback, slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, ErrorResponse{Error: err.Error(), Details: detailsFor(err)})
}

// badRequest reports a binding failure.
func badRequest(c *gin.Context, what string, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + ": " + err.Error()})
}

// actorID returns the authenticated user or aborts with 401.
func actorID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
