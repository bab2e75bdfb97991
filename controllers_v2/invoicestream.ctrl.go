package v2controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/quokkahub/quokkahub.go/lib/tokens"
)

type InvoiceStreamController struct {
	svc *service.QuokkahubService
}

type InvoiceEventWrapper struct {
	Type    string   `json:"type"`
	Event   string   `json:"event,omitempty"`
	Amount  uint64   `json:"amount,omitempty"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

func NewInvoiceStreamController(svc *service.QuokkahubService) *InvoiceStreamController {
	return &InvoiceStreamController{svc: svc}
}

// StreamInvoices streams the events of every invoice the token's identity is a party of.
// Browsers can't set headers on a websocket upgrade, so the access token comes as a query parameter.
func (controller *InvoiceStreamController) StreamInvoices(c echo.Context) error {
	identity, err := tokens.IdentityFromAccessToken(controller.svc.Config.JWTSecret, c.QueryParam("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	topic := identity.String()
	invoiceChan := make(chan models.InvoiceEvent, 10)
	subId := controller.svc.InvoicePubSub.Subscribe(topic, invoiceChan)
	defer controller.svc.InvoicePubSub.Unsubscribe(subId, topic)

	upgrader := websocket.Upgrader{}
	upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	//start listening for close messages
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	//start with keepalive message
	if err := ws.WriteJSON(&InvoiceEventWrapper{Type: "keepalive"}); err != nil {
		controller.svc.Logger.Error(err)
		return nil
	}
	for {
		select {
		case <-done:
			return nil
		case <-ticker.C:
			if err := ws.WriteJSON(&InvoiceEventWrapper{Type: "keepalive"}); err != nil {
				controller.svc.Logger.Error(err)
				return nil
			}
		case event, ok := <-invoiceChan:
			if !ok {
				return nil
			}
			invoice := toInvoice(&event.Invoice)
			err := ws.WriteJSON(&InvoiceEventWrapper{
				Type:    "invoice",
				Event:   event.Type,
				Amount:  event.Amount,
				Invoice: &invoice,
			})
			if err != nil {
				controller.svc.Logger.Error(err)
				return nil
			}
		}
	}
}
