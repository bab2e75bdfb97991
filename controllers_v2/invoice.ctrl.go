package v2controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/skip2/go-qrcode"
)

// InvoiceController : Add invoice controller struct
type InvoiceController struct {
	svc *service.QuokkahubService
}

func NewInvoiceController(svc *service.QuokkahubService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	Address     string `json:"address"`
	Creditor    string `json:"creditor"`
	Debtor      string `json:"debtor"`
	ProjectID   string `json:"project_id"`
	Amount      uint64 `json:"amount"`
	Balance     uint64 `json:"balance"`
	Paid        uint64 `json:"paid"`
	Memo        string `json:"memo,omitempty"`
	IssuedAt    int64  `json:"issued_at"`
	ConfirmedAt int64  `json:"confirmed_at"`
	Bump        uint8  `json:"bump"`
	State       string `json:"state"`
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

type AddInvoiceRequestBody struct {
	Debtor    string `json:"debtor" validate:"required,identity"`
	Amount    uint64 `json:"amount"`
	Memo      string `json:"memo"`
	ProjectID string `json:"project_id"`
	Nonce     *uint8 `json:"nonce"`
}

func identityFrom(c echo.Context) security.Identity {
	return c.Get(security.ContextKeyIdentity).(security.Identity)
}

func toInvoice(invoice *models.Invoice) Invoice {
	return Invoice{
		Address:     invoice.Address,
		Creditor:    invoice.Creditor,
		Debtor:      invoice.Debtor,
		ProjectID:   invoice.ProjectID,
		Amount:      invoice.Amount,
		Balance:     invoice.Balance,
		Paid:        invoice.Paid(),
		Memo:        invoice.Memo,
		IssuedAt:    invoice.IssuedAt,
		ConfirmedAt: invoice.ConfirmedAt,
		Bump:        invoice.Bump,
		State:       invoice.State(),
	}
}

// AddInvoice godoc
// @Summary      Issue an invoice
// @Description  Issues an invoice owed by the debtor to the authenticated identity
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        AddInvoiceRequestBody  body      AddInvoiceRequestBody  True  "Invoice to issue"
// @Success      200                    {object}  Invoice
// @Failure      400                    {object}  responses.ErrorResponse
// @Failure      409                    {object}  responses.ErrorResponse
// @Failure      500                    {object}  responses.ErrorResponse
// @Router       /v2/invoices [post]
// @Security     OAuth2Password
func (controller *InvoiceController) AddInvoice(c echo.Context) error {
	creditor := identityFrom(c)
	var body AddInvoiceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load addinvoice request body: identity:%s error: %v", creditor, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid addinvoice request body identity:%s error: %v", creditor, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.Issue(c.Request().Context(), creditor, service.IssueInvoiceRequest{
		Debtor:    security.MustParseIdentity(body.Debtor),
		Balance:   body.Amount,
		Memo:      body.Memo,
		ProjectID: body.ProjectID,
		Nonce:     body.Nonce,
	})
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, toInvoice(invoice))
}

// GetOutgoingInvoices godoc
// @Summary      Retrieve invoices to pay
// @Description  Returns the invoices the authenticated identity owes
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices/outgoing [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetOutgoingInvoices(c echo.Context) error {
	return controller.listInvoices(c, common.InvoiceRoleDebtor)
}

// GetIncomingInvoices godoc
// @Summary      Retrieve issued invoices
// @Description  Returns the invoices issued by the authenticated identity
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices/incoming [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetIncomingInvoices(c echo.Context) error {
	return controller.listInvoices(c, common.InvoiceRoleCreditor)
}

func (controller *InvoiceController) listInvoices(c echo.Context, role string) error {
	invoices, err := controller.svc.InvoicesFor(c.Request().Context(), identityFrom(c), role)
	if err != nil {
		return responses.Respond(c, err)
	}

	response := make([]Invoice, len(invoices))
	for i := range invoices {
		response[i] = toInvoice(&invoices[i])
	}
	return c.JSON(http.StatusOK, &GetInvoicesResponseBody{Invoices: response})
}

// findOwnInvoice loads the invoice at the :address path parameter. Only its
// creditor and debtor may see it.
func (controller *InvoiceController) findOwnInvoice(c echo.Context) (*models.Invoice, error) {
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), c.Param("address"))
	if err != nil {
		return nil, err
	}
	identity := identityFrom(c).String()
	if invoice.Creditor != identity && invoice.Debtor != identity {
		return nil, service.ErrUnauthorized
	}
	return invoice, nil
}

// GetInvoice godoc
// @Summary      Retrieve an invoice
// @Description  Returns the invoice stored at the address
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        address  path      string  true  "Invoice address"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      403      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v2/invoices/{address} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	invoice, err := controller.findOwnInvoice(c)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, toInvoice(invoice))
}

// GetInvoiceQR godoc
// @Summary      Invoice QR code
// @Description  PNG QR code of the invoice address and its outstanding balance
// @Produce      png
// @Tags         Invoice
// @Param        address  path      string  true  "Invoice address"
// @Success      200
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v2/invoices/{address}/qr [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoiceQR(c echo.Context) error {
	invoice, err := controller.findOwnInvoice(c)
	if err != nil {
		return responses.Respond(c, err)
	}
	png, err := qrcode.Encode(fmt.Sprintf("quokka:%s?amount=%d", invoice.Address, invoice.Balance), qrcode.Medium, 256)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
