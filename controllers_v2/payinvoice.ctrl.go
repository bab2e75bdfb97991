package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

// PayInvoiceController : Pay invoice controller struct
type PayInvoiceController struct {
	svc *service.QuokkahubService
}

func NewPayInvoiceController(svc *service.QuokkahubService) *PayInvoiceController {
	return &PayInvoiceController{svc: svc}
}

type PayInvoiceRequestBody struct {
	Amount uint64 `json:"amount"`
}

type PayInvoiceResponseBody struct {
	Invoice     Invoice           `json:"invoice"`
	Transferred uint64            `json:"transferred"`
	Entry       *TransactionEntry `json:"entry,omitempty"`
}

// PayInvoice godoc
// @Summary      Pay an invoice
// @Description  Transfers up to amount from the authenticated debtor to the creditor. Overpayments are capped at the outstanding balance.
// @Accept       json
// @Produce      json
// @Tags         Payment
// @Param        address             path      string                 true  "Invoice address"
// @Param        PayInvoiceRequest   body      PayInvoiceRequestBody  True  "Amount to pay"
// @Success      200                 {object}  PayInvoiceResponseBody
// @Failure      400                 {object}  responses.ErrorResponse
// @Failure      403                 {object}  responses.ErrorResponse
// @Failure      404                 {object}  responses.ErrorResponse
// @Failure      409                 {object}  responses.ErrorResponse
// @Failure      500                 {object}  responses.ErrorResponse
// @Router       /v2/invoices/{address}/payments [post]
// @Security     OAuth2Password
func (controller *PayInvoiceController) PayInvoice(c echo.Context) error {
	debtor := identityFrom(c)
	reqBody := PayInvoiceRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load payinvoice request body: identity:%s error: %v", debtor, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.FindInvoice(c.Request().Context(), c.Param("address"))
	if err != nil {
		return responses.Respond(c, err)
	}
	ref, err := service.RefFor(invoice)
	if err != nil {
		return responses.Respond(c, err)
	}

	result, err := controller.svc.Pay(c.Request().Context(), debtor, ref, reqBody.Amount)
	if err != nil {
		c.Logger().Errorj(
			log.JSON{
				"message":  "payment failed",
				"error":    err,
				"identity": debtor.String(),
				"address":  invoice.Address,
				"amount":   reqBody.Amount,
			},
		)
		return responses.Respond(c, err)
	}

	response := &PayInvoiceResponseBody{
		Invoice:     toInvoice(result.Invoice),
		Transferred: result.Transferred,
	}
	if result.Entry != nil {
		entry := toTransactionEntry(*result.Entry)
		response.Entry = &entry
	}
	return c.JSON(http.StatusOK, response)
}
