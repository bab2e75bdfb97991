package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/uptrace/bun"
)

// Depositor is implemented by transferrers that can bring value into the system.
type Depositor interface {
	Deposit(ctx context.Context, tx bun.Tx, owner security.Identity, amount uint64) (*models.TransactionEntry, error)
}

// CreateAccount registers identity. Registering twice returns the existing account.
func (svc *QuokkahubService) CreateAccount(ctx context.Context, identity security.Identity) (*models.Account, error) {
	account := &models.Account{}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := ensureAccount(ctx, tx, accountRef{identity: identity.String(), accountType: common.AccountTypeCurrent})
		if err != nil {
			return err
		}
		return tx.NewSelect().Model(account).Where("identity = ?", identity.String()).Limit(1).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (svc *QuokkahubService) AccountFor(ctx context.Context, identity security.Identity) (*models.Account, error) {
	account := &models.Account{}
	err := svc.DB.NewSelect().Model(account).Where("identity = ?", identity.String()).Limit(1).Scan(ctx)
	return account, err
}

// CurrentBalance is the spendable balance of identity, zero for unknown identities.
func (svc *QuokkahubService) CurrentBalance(ctx context.Context, identity security.Identity) (int64, error) {
	account, err := svc.AccountFor(ctx, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (svc *QuokkahubService) Deposit(ctx context.Context, identity security.Identity, amount uint64) (*models.TransactionEntry, error) {
	svc.setDefaults()
	depositor, ok := svc.Transfers.(Depositor)
	if !ok {
		return nil, fmt.Errorf("value transferrer %T does not accept deposits", svc.Transfers)
	}
	var entry *models.TransactionEntry
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		entry, err = depositor.Deposit(ctx, tx, identity, amount)
		return err
	})
	if err != nil {
		svc.Logger.Errorf("Deposit of %d for %s failed: %v", amount, identity.String(), err)
		return nil, err
	}
	svc.Logger.Infof("Deposited %d for %s", amount, identity.String())
	return entry, nil
}

// TransactionEntriesFor lists the newest ledger entries touching the account of identity.
func (svc *QuokkahubService) TransactionEntriesFor(ctx context.Context, identity security.Identity) ([]models.TransactionEntry, error) {
	transactionEntries := []models.TransactionEntry{}
	account, err := svc.AccountFor(ctx, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return transactionEntries, nil
	}
	if err != nil {
		return nil, err
	}
	err = svc.DB.NewSelect().
		Model(&transactionEntries).
		Where("credit_account_id = ? OR debit_account_id = ?", account.ID, account.ID).
		OrderExpr("id DESC").
		Limit(100).
		Scan(ctx)
	return transactionEntries, err
}
