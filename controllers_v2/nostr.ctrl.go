package v2controllers

import (
	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

// NostrController accepts signed command events.
type NostrController struct {
	svc       *service.QuokkahubService
	responder responses.RelayResponder
}

func NewNostrController(svc *service.QuokkahubService) *NostrController {
	return &NostrController{svc: svc}
}

// HandleNostrEvent godoc
// @Summary      Submit a command event
// @Description  Runs the invoice operation named by a signed kind 23195 event and answers like a relay
// @Accept       json
// @Produce      json
// @Tags         Nostr
// @Success      200  {array}   interface{}
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v2/event [post]
func (controller *NostrController) HandleNostrEvent(c echo.Context) error {
	// set by SignedEventMiddleware
	evt, ok := c.Get(security.ContextKeyEvent).(nostr.Event)
	if !ok {
		return controller.responder.NostrErrorResponse(c, "missing event")
	}
	msg, err := controller.svc.HandleCommandEvent(c.Request().Context(), evt)
	if err != nil {
		c.Logger().Errorf("Command event %s from %s failed: %v", evt.ID, evt.PubKey, err)
		return controller.responder.EventError(c, evt, err)
	}
	return controller.responder.GenericOk(c, evt, msg, true)
}
