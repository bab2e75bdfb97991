package models

import (
	"time"
)

const (
	EntryTypePayment = "payment"
	EntryTypeDeposit = "deposit"
)

// TransactionEntry : Transaction Entries Model
// Every movement of value is recorded once, debiting one account and crediting another.
type TransactionEntry struct {
	ID              int64     `json:"id" bun:",pk,autoincrement"`
	InvoiceAddress  string    `json:"invoice_address" bun:",nullzero"`
	Invoice         *Invoice  `json:"-" bun:"rel:belongs-to,join:invoice_address=address"`
	CreditAccountID int64     `json:"credit_account_id" bun:",notnull"`
	CreditAccount   *Account  `json:"-" bun:"rel:belongs-to,join:credit_account_id=id"`
	DebitAccountID  int64     `json:"debit_account_id" bun:",notnull"`
	DebitAccount    *Account  `json:"-" bun:"rel:belongs-to,join:debit_account_id=id"`
	Amount          int64     `json:"amount" bun:",notnull"`
	EntryType       string    `json:"entry_type" bun:",notnull"`
	CreatedAt       time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
