package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Stable error codes of the API.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeAlreadyBusy            = "ALREADY_BUSY"
	CodeNoLongerAvailable      = "NO_LONGER_AVAILABLE"
	CodeOrderMissing           = "ORDER_MISSING"
	CodeInvalidOrExpiredOtp    = "INVALID_OR_EXPIRED_OTP"
	CodeDeliveryContactMissing = "DELIVERY_CONTACT_MISSING"
	CodeForbidden              = "FORBIDDEN"
	CodeValidation             = "VALIDATION_ERROR"
	CodePaymentNotCaptured     = "PAYMENT_NOT_CAPTURED"
	CodeDeliveryDispatchFailed = "DELIVERY_DISPATCH_FAILED"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInternal               = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins.
var errorTable = []errorMapping{
	{commands.ErrAlreadyBusy, http.StatusConflict, CodeAlreadyBusy},
	{commands.ErrNoLongerAvailable, http.StatusConflict, CodeNoLongerAvailable},
	{commands.ErrOrderMissing, http.StatusConflict, CodeOrderMissing},
	{order.ErrInvalidOrExpiredOtp, http.StatusUnprocessableEntity, CodeInvalidOrExpiredOtp},
	{order.ErrDeliveryContactMissing, http.StatusUnprocessableEntity, CodeDeliveryContactMissing},
	{commands.ErrDeliveryDispatchFailed, http.StatusBadGateway, CodeDeliveryDispatchFailed},
	{order.ErrPaymentNotCaptured, http.StatusPaymentRequired, CodePaymentNotCaptured},
	{order.ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
	{assignment.ErrNotACandidate, http.StatusForbidden, CodeForbidden},
	{errs.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{errs.ErrObjectNotFound, http.StatusNotFound, CodeNotFound},
	{errs.ErrValueIsRequired, http.StatusBadRequest, CodeValidation},
	{errs.ErrValueIsInvalid, http.StatusBadRequest, CodeValidation},
	{errs.ErrValueIsOutOfRange, http.StatusBadRequest, CodeValidation},
}

// validationError carries per-field messages from request validation.
type validationError struct {
	details map[string]string
}

func (e *validationError) Error() string {
	return "validation failed"
}

// toResponse maps err to a status and body. Unknown errors become a generic 500.
// The wrapped cause of a 5xx is never exposed, only the matched error's own text.
func toResponse(err error) (int, ErrorResponse) {
	var invalid *validationError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, ErrorResponse{Code: CodeValidation, Message: invalid.Error(), Details: invalid.details}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return fromEchoError(httpErr)
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			message := err.Error()
			if m.status >= http.StatusInternalServerError {
				message = m.target.Error()
			}
			return m.status, ErrorResponse{Code: m.code, Message: message}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "internal error"}
}

func fromEchoError(httpErr *echo.HTTPError) (int, ErrorResponse) {
	message := http.StatusText(httpErr.Code)
	if text, ok := httpErr.Message.(string); ok && text != "" {
		message = text
	}

	switch httpErr.Code {
	case http.StatusUnauthorized:
		return httpErr.Code, ErrorResponse{Code: CodeUnauthorized, Message: message}
	case http.StatusForbidden:
		return httpErr.Code, ErrorResponse{Code: CodeForbidden, Message: message}
	case http.StatusNotFound:
		return httpErr.Code, ErrorResponse{Code: CodeNotFound, Message: message}
	}
	if httpErr.Code < http.StatusInternalServerError {
		return httpErr.Code, ErrorResponse{Code: CodeValidation, Message: message}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "internal error"}
}

// ErrorHandler is installed as echo's HTTPErrorHandler. Handlers return errors and
// this writes the {code, message} body. Only 5xx answers are logged as failures.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("write error response")
		}
	}
}
