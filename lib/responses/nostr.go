package responses

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
)

// RelayResponder answers command events the way a relay answers an EVENT
// message: ["OK", <event id>, <accepted>, <message>].
type RelayResponder struct{}

func (responder *RelayResponder) NostrErrorResponse(c echo.Context, errMsg string) error {
	msg := fmt.Sprintf("error: %s", errMsg)
	res := []interface{}{"OK", -1, false, msg}

	return c.JSON(http.StatusOK, res)
}

func (responder *RelayResponder) EventError(c echo.Context, event nostr.Event, err error) error {
	res := []interface{}{"OK", event.ID, false, fmt.Sprintf("error: %s", err.Error())}
	return c.JSON(http.StatusOK, res)
}

func (responder *RelayResponder) GenericOk(c echo.Context, event nostr.Event, msg string, status bool) error {
	res := []interface{}{"OK", event.ID, status, msg}
	return c.JSON(http.StatusOK, res)
}
