package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/address"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/uptrace/bun"
)

type IssueInvoiceRequest struct {
	Debtor    security.Identity
	Balance   uint64
	Memo      string
	ProjectID string
	// Nonce is optional. When set it has to equal the canonical bump.
	Nonce *uint8
}

// InvoiceRef names an invoice by the seeds its address is derived from.
type InvoiceRef struct {
	Creditor  security.Identity
	Debtor    security.Identity
	ProjectID string
}

func (ref InvoiceRef) Address() (address.Address, uint8, error) {
	return address.FindAddress(ref.Creditor, ref.Debtor, ref.ProjectID)
}

type PaymentResult struct {
	Invoice     *models.Invoice
	Transferred uint64
	Entry       *models.TransactionEntry
}

// RefFor rebuilds the derivation seeds of a stored invoice.
func RefFor(invoice *models.Invoice) (InvoiceRef, error) {
	creditor, err := security.ParseIdentity(invoice.Creditor)
	if err != nil {
		return InvoiceRef{}, err
	}
	debtor, err := security.ParseIdentity(invoice.Debtor)
	if err != nil {
		return InvoiceRef{}, err
	}
	return InvoiceRef{Creditor: creditor, Debtor: debtor, ProjectID: invoice.ProjectID}, nil
}

func (svc *QuokkahubService) validateIssue(creditor security.Identity, req IssueInvoiceRequest) error {
	if creditor == req.Debtor {
		return ErrSameParty
	}
	if req.Balance > math.MaxInt64 {
		return fmt.Errorf("%w: balance %d exceeds %d", ErrInvalidAmount, req.Balance, int64(math.MaxInt64))
	}
	if svc.Config != nil && svc.Config.MemoMaxLength > 0 && len(req.Memo) > svc.Config.MemoMaxLength {
		return fmt.Errorf("%w: %d bytes, max %d", ErrMemoTooLong, len(req.Memo), svc.Config.MemoMaxLength)
	}
	if svc.Config != nil && svc.Config.ProjectIDMaxLength > 0 && len(req.ProjectID) > svc.Config.ProjectIDMaxLength {
		return fmt.Errorf("%w: %d bytes, max %d", ErrProjectIDInvalid, len(req.ProjectID), svc.Config.ProjectIDMaxLength)
	}
	return nil
}

// Issue creates a new open invoice owed by req.Debtor to creditor. The caller
// is the creditor; authentication happens before this is called.
func (svc *QuokkahubService) Issue(ctx context.Context, creditor security.Identity, req IssueInvoiceRequest) (*models.Invoice, error) {
	if err := svc.validateIssue(creditor, req); err != nil {
		return nil, err
	}
	addr, bump, err := address.FindAddress(creditor, req.Debtor, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if req.Nonce != nil && *req.Nonce != bump {
		return nil, fmt.Errorf("%w: got %d, canonical bump is %d", ErrInvalidNonce, *req.Nonce, bump)
	}

	invoice := &models.Invoice{
		Address:     addr.String(),
		ProjectID:   req.ProjectID,
		Creditor:    creditor.String(),
		Debtor:      req.Debtor.String(),
		Amount:      req.Balance,
		Balance:     req.Balance,
		Memo:        req.Memo,
		IssuedAt:    svc.now().Unix(),
		ConfirmedAt: 0,
		Bump:        bump,
		Space:       models.InvoiceSpace(req.Memo, req.ProjectID),
	}

	err = svc.withInvoiceLock(ctx, invoice.Address, func() error {
		return svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			exists, err := tx.NewSelect().Model((*models.Invoice)(nil)).Where("address = ?", invoice.Address).Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				return ErrAddressAlreadyInUse
			}
			if _, err := tx.NewInsert().Model(invoice).Exec(ctx); err != nil {
				if isUniqueViolation(err) {
					return ErrAddressAlreadyInUse
				}
				return err
			}
			return nil
		})
	})
	if err != nil {
		svc.Logger.Errorf("Could not issue invoice %s from %s to %s: %v", invoice.Address, invoice.Creditor, invoice.Debtor, err)
		invoiceOperations.WithLabelValues("issue", resultLabel(err)).Inc()
		return nil, err
	}
	svc.Logger.Infof("Issued invoice %s: creditor %s debtor %s balance %d", invoice.Address, invoice.Creditor, invoice.Debtor, invoice.Balance)
	invoiceOperations.WithLabelValues("issue", resultLabel(nil)).Inc()
	svc.publishInvoiceEvent(common.InvoiceEventIssued, invoice, invoice.Balance)
	return invoice, nil
}

// Pay transfers min(amount, balance) from the debtor to the creditor. Paying a
// fully paid invoice or paying zero succeeds without moving value.
func (svc *QuokkahubService) Pay(ctx context.Context, debtor security.Identity, ref InvoiceRef, amount uint64) (*PaymentResult, error) {
	addr, _, err := ref.Address()
	if err != nil {
		return nil, err
	}
	result := &PaymentResult{}
	err = svc.withInvoiceLock(ctx, addr.String(), func() error {
		return svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			invoice, err := svc.loadInvoice(ctx, tx, addr.String(), ref)
			if err != nil {
				return err
			}
			if invoice.Debtor != debtor.String() {
				return ErrUnauthorized
			}
			if invoice.IsSettled() {
				return ErrAlreadySettled
			}
			result.Invoice = invoice

			transfer := min(amount, invoice.Balance)
			if transfer == 0 {
				return nil
			}
			spendable, err := svc.Transfers.SpendableBalance(ctx, tx, debtor)
			if err != nil {
				return err
			}
			if spendable < transfer {
				return fmt.Errorf("%w: spendable %d, required %d", ErrInsufficientFunds, spendable, transfer)
			}
			entry, err := svc.Transfers.Transfer(ctx, tx, debtor, Transfer{
				From:           debtor,
				To:             ref.Creditor,
				Amount:         transfer,
				InvoiceAddress: invoice.Address,
			})
			if err != nil {
				return err
			}

			// the balance only goes down once the value has actually moved
			invoice.Balance -= transfer
			if _, err := tx.NewUpdate().Model(invoice).Column("balance", "updated_at").WherePK().Exec(ctx); err != nil {
				return err
			}
			result.Transferred = transfer
			result.Entry = entry
			return nil
		})
	})
	if err != nil {
		svc.Logger.Errorf("Payment of %d on invoice %s by %s failed: %v", amount, addr.String(), debtor.String(), err)
		invoiceOperations.WithLabelValues("pay", resultLabel(err)).Inc()
		return nil, err
	}
	invoiceOperations.WithLabelValues("pay", resultLabel(nil)).Inc()
	if result.Transferred == 0 {
		svc.Logger.Debugf("Payment on invoice %s moved no value, balance %d", addr.String(), result.Invoice.Balance)
		return result, nil
	}
	svc.Logger.Infof("Paid %d on invoice %s, remaining balance %d", result.Transferred, addr.String(), result.Invoice.Balance)
	valueTransferred.Add(float64(result.Transferred))
	svc.publishInvoiceEvent(common.InvoiceEventPaid, result.Invoice, result.Transferred)
	return result, nil
}

// ConfirmSettlement lets the creditor acknowledge a fully paid invoice. It
// records the confirmation time once and never again.
func (svc *QuokkahubService) ConfirmSettlement(ctx context.Context, creditor security.Identity, ref InvoiceRef) (*models.Invoice, error) {
	addr, _, err := ref.Address()
	if err != nil {
		return nil, err
	}
	var invoice *models.Invoice
	err = svc.withInvoiceLock(ctx, addr.String(), func() error {
		return svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			invoice, err = svc.loadInvoice(ctx, tx, addr.String(), ref)
			if err != nil {
				return err
			}
			if invoice.Creditor != creditor.String() {
				return ErrUnauthorized
			}
			if invoice.IsSettled() {
				return ErrAlreadySettled
			}
			if invoice.Balance > 0 {
				return fmt.Errorf("%w: balance %d", ErrUnsettledConfirmAttempt, invoice.Balance)
			}
			confirmedAt := svc.now().Unix()
			// a clock at the epoch would leave the invoice looking unconfirmed
			if confirmedAt == 0 {
				confirmedAt = 1
			}
			invoice.ConfirmedAt = confirmedAt
			_, err := tx.NewUpdate().Model(invoice).Column("confirmed_at", "updated_at").WherePK().Exec(ctx)
			return err
		})
	})
	if err != nil {
		svc.Logger.Errorf("Could not confirm settlement of invoice %s by %s: %v", addr.String(), creditor.String(), err)
		invoiceOperations.WithLabelValues("confirm", resultLabel(err)).Inc()
		return nil, err
	}
	svc.Logger.Infof("Invoice %s settled at %d", invoice.Address, invoice.ConfirmedAt)
	invoiceOperations.WithLabelValues("confirm", resultLabel(nil)).Inc()
	svc.publishInvoiceEvent(common.InvoiceEventSettled, invoice, invoice.Amount)
	return invoice, nil
}

// loadInvoice reads and locks the record at addr and checks it belongs to ref.
func (svc *QuokkahubService) loadInvoice(ctx context.Context, tx bun.Tx, addr string, ref InvoiceRef) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	q := tx.NewSelect().Model(invoice).Where("address = ?", addr).Limit(1)
	err := forUpdate(q).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if invoice.Creditor != ref.Creditor.String() || invoice.Debtor != ref.Debtor.String() || invoice.ProjectID != ref.ProjectID {
		return nil, ErrUnauthorized
	}
	return invoice, nil
}

func (svc *QuokkahubService) FindInvoice(ctx context.Context, addr string) (*models.Invoice, error) {
	parsed, err := address.ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	invoice := &models.Invoice{}
	err = svc.DB.NewSelect().Model(invoice).Where("address = ?", parsed.String()).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// InvoicesFor lists the newest invoices in which identity has the given role.
func (svc *QuokkahubService) InvoicesFor(ctx context.Context, identity security.Identity, role string) ([]models.Invoice, error) {
	invoices := []models.Invoice{}

	query := svc.DB.NewSelect().Model(&invoices)
	switch role {
	case common.InvoiceRoleCreditor:
		query.Where("creditor = ?", identity.String())
	case common.InvoiceRoleDebtor:
		query.Where("debtor = ?", identity.String())
	default:
		return nil, fmt.Errorf("unknown invoice role %q", role)
	}
	query.OrderExpr("issued_at DESC, address ASC").Limit(100)
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (svc *QuokkahubService) publishInvoiceEvent(eventType string, invoice *models.Invoice, amount uint64) {
	svc.setDefaults()
	event := models.InvoiceEvent{
		Type:      eventType,
		Invoice:   *invoice,
		State:     invoice.State(),
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	dropped := 0
	// parties get their own topic, streams subscribe by identity
	for _, topic := range []string{eventType, common.InvoiceTopicAll, invoice.Creditor, invoice.Debtor} {
		dropped += svc.InvoicePubSub.Publish(topic, event)
	}
	if dropped > 0 {
		svc.Logger.Warnf("%d subscribers missed the %s event of invoice %s", dropped, eventType, invoice.Address)
	}
}
