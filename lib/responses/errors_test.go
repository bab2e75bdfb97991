package responses

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/stretchr/testify/assert"
)

func TestBadAuthErrorsNotAllowedForSentry(t *testing.T) {
	badAuthErrResponse := echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
		"error":   true,
		"code":    1,
		"message": "bad auth",
	})

	isAllowed := isErrAllowedForSentry(badAuthErrResponse)
	assert.False(t, isAllowed)
}

func TestNotBadAuthErrorsAllowedForSentry(t *testing.T) {
	notBadAuthErrResponse := echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    8,
		"message": "bad event",
	})

	isAllowed := isErrAllowedForSentry(notBadAuthErrResponse)
	assert.True(t, isAllowed)
}

func TestNonErrorResponseErrorsAllowedForSentry(t *testing.T) {
	err := errors.New("random error")

	isAllowed := isErrAllowedForSentry(err)
	assert.True(t, isAllowed)
}

func TestErrorResponseFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrUnauthorized, http.StatusForbidden},
		{fmt.Errorf("%w: spendable 1, required 2", service.ErrInsufficientFunds), http.StatusBadRequest},
		{service.ErrAddressAlreadyInUse, http.StatusConflict},
		{service.ErrUnsettledConfirmAttempt, http.StatusConflict},
		{service.ErrAlreadySettled, http.StatusConflict},
		{service.ErrInvoiceNotFound, http.StatusNotFound},
		{service.ErrSameParty, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, ErrorResponseFor(tt.err).HttpStatusCode, tt.err.Error())
	}

	resp := ErrorResponseFor(fmt.Errorf("%w: 300 bytes, max 256", service.ErrMemoTooLong))
	assert.Equal(t, BadArgumentsError.Code, resp.Code)
	assert.Contains(t, resp.Message, "memo too long")
}
