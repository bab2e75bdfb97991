package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- make sure transfers happen from one account to another one
				ALTER TABLE transaction_entries
				ADD CONSTRAINT check_not_same_account
				CHECK (debit_account_id != credit_account_id);

			-- make sure value only moves in one direction per entry
				ALTER TABLE transaction_entries
				ADD CONSTRAINT check_positive_amount
				CHECK (amount > 0);

			-- current accounts can never be overdrawn, the external account funds deposits
				ALTER TABLE accounts
				ADD CONSTRAINT check_balance
				CHECK (type = 'external' OR balance >= 0);

			-- an invoice never owes more than it was issued for and settles only when paid
				ALTER TABLE invoices
				ADD CONSTRAINT check_invoice_balance
				CHECK (balance >= 0 AND balance <= amount);

				ALTER TABLE invoices
				ADD CONSTRAINT check_invoice_settlement
				CHECK (confirmed_at = 0 OR balance = 0);
		`
		if _, err := db.ExecContext(ctx, sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
