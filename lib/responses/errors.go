package responses

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/address"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var UnauthorizedError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "caller is not a party of this invoice in the required role",
	HttpStatusCode: 403,
}

var NotEnoughBalanceError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "not enough balance",
	HttpStatusCode: 400,
}

var AddressAlreadyInUseError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "invoice address already in use",
	HttpStatusCode: 409,
}

var UnsettledConfirmAttemptError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "invoice still has an outstanding balance",
	HttpStatusCode: 409,
}

var AlreadySettledError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "invoice already settled",
	HttpStatusCode: 409,
}

var InvoiceNotFoundError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "invoice not found",
	HttpStatusCode: 404,
}

var InvoiceLockedError = ErrorResponse{
	Error:          true,
	Code:           9,
	Message:        "invoice is busy, please try again",
	HttpStatusCode: 423,
}

var EventReplayedError = ErrorResponse{
	Error:          true,
	Code:           10,
	Message:        "event has already been processed",
	HttpStatusCode: 409,
}

func withMessage(resp ErrorResponse, err error) ErrorResponse {
	resp.Message = err.Error()
	return resp
}

// ErrorResponseFor maps errors of the invoice operations to their response.
func ErrorResponseFor(err error) ErrorResponse {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return UnauthorizedError
	case errors.Is(err, service.ErrInsufficientFunds):
		return NotEnoughBalanceError
	case errors.Is(err, service.ErrAddressAlreadyInUse):
		return AddressAlreadyInUseError
	case errors.Is(err, service.ErrUnsettledConfirmAttempt):
		return UnsettledConfirmAttemptError
	case errors.Is(err, service.ErrAlreadySettled):
		return AlreadySettledError
	case errors.Is(err, service.ErrInvoiceNotFound):
		return InvoiceNotFoundError
	case errors.Is(err, service.ErrInvoiceLocked):
		return InvoiceLockedError
	case errors.Is(err, service.ErrEventReplayed):
		return EventReplayedError
	case errors.Is(err, service.ErrSameParty),
		errors.Is(err, service.ErrMemoTooLong),
		errors.Is(err, service.ErrProjectIDInvalid),
		errors.Is(err, service.ErrInvalidNonce),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCommand),
		errors.Is(err, address.ErrInvalidAddress),
		errors.Is(err, address.ErrNoValidBump),
		errors.Is(err, security.ErrInvalidIdentity):
		return withMessage(BadArgumentsError, err)
	case errors.Is(err, security.ErrInvalidSignature),
		errors.Is(err, security.ErrEventIDMismatch),
		errors.Is(err, security.ErrEventExpired):
		return BadAuthError
	default:
		return GeneralServerError
	}
}

// Respond writes the response matching err.
func Respond(c echo.Context, err error) error {
	resp := ErrorResponseFor(err)
	if resp.HttpStatusCode == http.StatusInternalServerError {
		c.Logger().Errorj(map[string]interface{}{
			"message": "invoice operation failed",
			"error":   err,
			"path":    c.Path(),
		})
		sentry.CaptureException(err)
	}
	return c.JSON(resp.HttpStatusCode, &resp)
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			if identity, ok := c.Get(security.ContextKeyIdentity).(security.Identity); ok {
				scope.SetExtra("Identity", identity.String())
			}
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
		return
	}
	c.JSON(http.StatusInternalServerError, GeneralServerError)
}

// bad auth responses are client mistakes, not something to page anyone for
func isErrAllowedForSentry(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	if m, ok := he.Message.(echo.Map); ok {
		if code, ok := m["code"].(int); ok && code == BadAuthError.Code {
			return false
		}
	}
	return true
}
