package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

type SettlementController struct {
	svc *service.QuokkahubService
}

func NewSettlementController(svc *service.QuokkahubService) *SettlementController {
	return &SettlementController{svc: svc}
}

// ConfirmSettlement godoc
// @Summary      Confirm settlement
// @Description  The creditor marks a fully paid invoice as settled. This can happen only once.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        address  path      string  true  "Invoice address"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      403      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Failure      409      {object}  responses.ErrorResponse
// @Router       /v2/invoices/{address}/settlement [post]
// @Security     OAuth2Password
func (controller *SettlementController) ConfirmSettlement(c echo.Context) error {
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), c.Param("address"))
	if err != nil {
		return responses.Respond(c, err)
	}
	ref, err := service.RefFor(invoice)
	if err != nil {
		return responses.Respond(c, err)
	}
	invoice, err = controller.svc.ConfirmSettlement(c.Request().Context(), identityFrom(c), ref)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, toInvoice(invoice))
}
