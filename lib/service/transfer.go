package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/uptrace/bun"
)

// Transfer moves Amount units of value from From to To. InvoiceAddress links
// the resulting ledger entry to the invoice that was paid, if any.
type Transfer struct {
	From           security.Identity
	To             security.Identity
	Amount         uint64
	InvoiceAddress string
}

// ValueTransferrer is the value movement primitive the invoice state machine
// runs on. Both methods run inside the caller's transaction so that a payment
// and the invoice balance update commit or roll back together.
type ValueTransferrer interface {
	SpendableBalance(ctx context.Context, tx bun.Tx, owner security.Identity) (uint64, error)
	Transfer(ctx context.Context, tx bun.Tx, signer security.Identity, t Transfer) (*models.TransactionEntry, error)
}

// LedgerTransferrer keeps one current account per identity and records every
// movement as a double entry in transaction_entries.
type LedgerTransferrer struct{}

func (l *LedgerTransferrer) SpendableBalance(ctx context.Context, tx bun.Tx, owner security.Identity) (uint64, error) {
	account := models.Account{}
	err := tx.NewSelect().Model(&account).Where("identity = ?", owner.String()).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if account.Balance < 0 {
		return 0, nil
	}
	return uint64(account.Balance), nil
}

func (l *LedgerTransferrer) Transfer(ctx context.Context, tx bun.Tx, signer security.Identity, t Transfer) (*models.TransactionEntry, error) {
	// only the owner of the funds can move them
	if signer != t.From {
		return nil, ErrUnauthorized
	}
	if t.From == t.To {
		return nil, ErrSameParty
	}
	if t.Amount == 0 || t.Amount > math.MaxInt64 {
		return nil, ErrInvalidAmount
	}
	debit, credit, err := lockAccounts(ctx, tx,
		accountRef{identity: t.From.String(), accountType: common.AccountTypeCurrent},
		accountRef{identity: t.To.String(), accountType: common.AccountTypeCurrent},
	)
	if err != nil {
		return nil, err
	}
	return moveValue(ctx, tx, debit, credit, int64(t.Amount), models.EntryTypePayment, t.InvoiceAddress)
}

// Deposit credits owner with value entering the system. The external account
// is the only one allowed to go negative.
func (l *LedgerTransferrer) Deposit(ctx context.Context, tx bun.Tx, owner security.Identity, amount uint64) (*models.TransactionEntry, error) {
	if amount == 0 || amount > math.MaxInt64 {
		return nil, ErrInvalidAmount
	}
	debit, credit, err := lockAccounts(ctx, tx,
		accountRef{identity: common.ExternalAccountIdentity, accountType: common.AccountTypeExternal},
		accountRef{identity: owner.String(), accountType: common.AccountTypeCurrent},
	)
	if err != nil {
		return nil, err
	}
	return moveValue(ctx, tx, debit, credit, int64(amount), models.EntryTypeDeposit, "")
}

type accountRef struct {
	identity    string
	accountType string
}

func ensureAccount(ctx context.Context, tx bun.Tx, ref accountRef) error {
	account := &models.Account{Identity: ref.identity, Type: ref.accountType}
	_, err := tx.NewInsert().
		Model(account).
		On("CONFLICT (identity) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	return err
}

// lockAccounts makes sure both accounts exist and locks them in id order, so
// two transfers in opposite directions cannot deadlock each other.
func lockAccounts(ctx context.Context, tx bun.Tx, debitRef, creditRef accountRef) (debit, credit *models.Account, err error) {
	for _, ref := range []accountRef{debitRef, creditRef} {
		if err := ensureAccount(ctx, tx, ref); err != nil {
			return nil, nil, fmt.Errorf("could not create account for %s: %w", ref.identity, err)
		}
	}
	accounts := []models.Account{}
	q := tx.NewSelect().
		Model(&accounts).
		Where("identity IN (?)", bun.In([]string{debitRef.identity, creditRef.identity})).
		OrderExpr("id ASC")
	if err := forUpdate(q).Scan(ctx); err != nil {
		return nil, nil, err
	}
	for i := range accounts {
		switch accounts[i].Identity {
		case debitRef.identity:
			debit = &accounts[i]
		case creditRef.identity:
			credit = &accounts[i]
		}
	}
	if debit == nil || credit == nil {
		return nil, nil, fmt.Errorf("accounts for %s and %s not found", debitRef.identity, creditRef.identity)
	}
	return debit, credit, nil
}

func moveValue(ctx context.Context, tx bun.Tx, debit, credit *models.Account, amount int64, entryType, invoiceAddress string) (*models.TransactionEntry, error) {
	if debit.Type != common.AccountTypeExternal && debit.Balance < amount {
		return nil, fmt.Errorf("%w: account %d has %d, needs %d", ErrInsufficientFunds, debit.ID, debit.Balance, amount)
	}
	res, err := tx.NewUpdate().
		Model((*models.Account)(nil)).
		Set("balance = balance - ?", amount).
		Where("id = ?", debit.ID).
		Where("type = ? OR balance >= ?", common.AccountTypeExternal, amount).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrInsufficientFunds
	}
	_, err = tx.NewUpdate().
		Model((*models.Account)(nil)).
		Set("balance = balance + ?", amount).
		Where("id = ?", credit.ID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	entry := &models.TransactionEntry{
		InvoiceAddress:  invoiceAddress,
		CreditAccountID: credit.ID,
		DebitAccountID:  debit.ID,
		Amount:          amount,
		EntryType:       entryType,
	}
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, err
	}
	debit.Balance -= amount
	credit.Balance += amount
	return entry, nil
}

var _ ValueTransferrer = (*LedgerTransferrer)(nil)
