package integration_tests

import "time"

type ExpectedAuthResponseBody struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
}

type ExpectedAddInvoiceRequestBody struct {
	Debtor    string `json:"debtor"`
	Amount    uint64 `json:"amount"`
	Memo      string `json:"memo"`
	ProjectID string `json:"project_id"`
	Nonce     *uint8 `json:"nonce,omitempty"`
}

type ExpectedInvoice struct {
	Address     string `json:"address"`
	Creditor    string `json:"creditor"`
	Debtor      string `json:"debtor"`
	ProjectID   string `json:"project_id"`
	Amount      uint64 `json:"amount"`
	Balance     uint64 `json:"balance"`
	Paid        uint64 `json:"paid"`
	Memo        string `json:"memo"`
	IssuedAt    int64  `json:"issued_at"`
	ConfirmedAt int64  `json:"confirmed_at"`
	Bump        uint8  `json:"bump"`
	State       string `json:"state"`
}

type ExpectedInvoicesResponseBody struct {
	Invoices []ExpectedInvoice `json:"invoices"`
}

type ExpectedPayInvoiceRequestBody struct {
	Amount uint64 `json:"amount"`
}

type ExpectedTransactionEntry struct {
	ID             int64     `json:"id"`
	InvoiceAddress string    `json:"invoice_address"`
	Amount         int64     `json:"amount"`
	EntryType      string    `json:"entry_type"`
	CreatedAt      time.Time `json:"created_at"`
}

type ExpectedPayInvoiceResponseBody struct {
	Invoice     ExpectedInvoice           `json:"invoice"`
	Transferred uint64                    `json:"transferred"`
	Entry       *ExpectedTransactionEntry `json:"entry"`
}

type ExpectedBalanceResponse struct {
	Identity string `json:"identity"`
	Balance  int64  `json:"balance"`
}

type ExpectedTransactionsResponseBody struct {
	Transactions []ExpectedTransactionEntry `json:"transactions"`
}
