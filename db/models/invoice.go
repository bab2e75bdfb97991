package models

import (
	"context"
	"time"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/uptrace/bun"
)

// Invoice : Invoice Model
// One row per derived address. Creditor, debtor and project id are fixed at
// issue time; only Balance and ConfirmedAt ever change afterwards.
type Invoice struct {
	Address     string       `json:"address" bun:",pk"`
	ProjectID   string       `json:"project_id" bun:",notnull,unique:invoice_parties"`
	Creditor    string       `json:"creditor" bun:",notnull,unique:invoice_parties"`
	Debtor      string       `json:"debtor" bun:",notnull,unique:invoice_parties"`
	Amount      uint64       `json:"amount" bun:",notnull"`
	Balance     uint64       `json:"balance" bun:",notnull"`
	Memo        string       `json:"memo" bun:",notnull,default:''"`
	IssuedAt    int64        `json:"issued_at" bun:",notnull"`
	ConfirmedAt int64        `json:"confirmed_at" bun:",notnull,default:0"`
	Bump        uint8        `json:"bump" bun:",notnull"`
	Space       int          `json:"space" bun:",notnull"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

func (i *Invoice) State() string {
	switch {
	case i.ConfirmedAt != 0:
		return common.InvoiceStateSettled
	case i.Balance == 0:
		return common.InvoiceStateFullyPaid
	default:
		return common.InvoiceStateOpen
	}
}

func (i *Invoice) IsSettled() bool {
	return i.ConfirmedAt != 0
}

// Paid is what has been transferred to the creditor so far.
func (i *Invoice) Paid() uint64 {
	return i.Amount - i.Balance
}

// InvoiceSpace is the number of bytes reserved for an invoice record:
// discriminator, creditor, debtor, amount, balance, length prefixed memo,
// issued_at, confirmed_at, bump and length prefixed project id.
func InvoiceSpace(memo, projectID string) int {
	return 8 + 32 + 32 + 8 + 8 + (4 + len(memo)) + 8 + 8 + 1 + (4 + len(projectID))
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
