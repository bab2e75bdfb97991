package v2controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

type TransactionsController struct {
	svc *service.QuokkahubService
}

func NewTransactionsController(svc *service.QuokkahubService) *TransactionsController {
	return &TransactionsController{svc: svc}
}

type TransactionEntry struct {
	ID              int64     `json:"id"`
	InvoiceAddress  string    `json:"invoice_address,omitempty"`
	CreditAccountID int64     `json:"credit_account_id"`
	DebitAccountID  int64     `json:"debit_account_id"`
	Amount          int64     `json:"amount"`
	EntryType       string    `json:"entry_type"`
	CreatedAt       time.Time `json:"created_at"`
}

type GetTransactionsResponseBody struct {
	Transactions []TransactionEntry `json:"transactions"`
}

func toTransactionEntry(entry models.TransactionEntry) TransactionEntry {
	return TransactionEntry{
		ID:              entry.ID,
		InvoiceAddress:  entry.InvoiceAddress,
		CreditAccountID: entry.CreditAccountID,
		DebitAccountID:  entry.DebitAccountID,
		Amount:          entry.Amount,
		EntryType:       entry.EntryType,
		CreatedAt:       entry.CreatedAt,
	}
}

// GetTransactions godoc
// @Summary      Retrieve ledger entries
// @Description  Newest transaction entries crediting or debiting the authenticated identity
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  GetTransactionsResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/transactions [get]
// @Security     OAuth2Password
func (controller *TransactionsController) GetTransactions(c echo.Context) error {
	identity := identityFrom(c)
	entries, err := controller.svc.TransactionEntriesFor(c.Request().Context(), identity)
	if err != nil {
		return responses.Respond(c, err)
	}
	response := make([]TransactionEntry, len(entries))
	for i, entry := range entries {
		response[i] = toTransactionEntry(entry)
	}
	return c.JSON(http.StatusOK, &GetTransactionsResponseBody{Transactions: response})
}
