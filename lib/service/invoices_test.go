package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issue(t *testing.T, svc *QuokkahubService, creditor, debtor party, balance uint64, projectID string) *models.Invoice {
	t.Helper()
	invoice, err := svc.Issue(context.Background(), creditor.identity, IssueInvoiceRequest{
		Debtor:    debtor.identity,
		Balance:   balance,
		Memo:      "consulting, march",
		ProjectID: projectID,
	})
	require.NoError(t, err)
	return invoice
}

func refOf(creditor, debtor party, projectID string) InvoiceRef {
	return InvoiceRef{Creditor: creditor.identity, Debtor: debtor.identity, ProjectID: projectID}
}

func TestIssueInvoice(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)

	events, unsubscribe, err := svc.SubscribeInvoiceEvents()
	require.NoError(t, err)
	defer unsubscribe()

	invoice := issue(t, svc, alice, bob, 100, "p1")

	addr, bump, err := address.FindAddress(alice.identity, bob.identity, "p1")
	require.NoError(t, err)
	assert.Equal(t, addr.String(), invoice.Address)
	assert.Equal(t, bump, invoice.Bump)
	assert.Equal(t, uint64(100), invoice.Amount)
	assert.Equal(t, uint64(100), invoice.Balance)
	assert.Equal(t, clock.Now().Unix(), invoice.IssuedAt)
	assert.Equal(t, int64(0), invoice.ConfirmedAt)
	assert.Equal(t, common.InvoiceStateOpen, invoice.State())
	assert.Equal(t, models.InvoiceSpace("consulting, march", "p1"), invoice.Space)

	stored, err := svc.FindInvoice(ctx, invoice.Address)
	require.NoError(t, err)
	assert.Equal(t, alice.identity.String(), stored.Creditor)
	assert.Equal(t, bob.identity.String(), stored.Debtor)
	assert.Equal(t, "consulting, march", stored.Memo)

	select {
	case event := <-events:
		assert.Equal(t, common.InvoiceEventIssued, event.Type)
		assert.Equal(t, invoice.Address, event.Invoice.Address)
	case <-time.After(time.Second):
		t.Fatal("no issued event")
	}
}

func TestIssueZeroBalanceIsFullyPaid(t *testing.T) {
	svc, _ := newTestService(t)
	alice, bob := newParty(t), newParty(t)

	invoice := issue(t, svc, alice, bob, 0, "")
	assert.Equal(t, common.InvoiceStateFullyPaid, invoice.State())

	settled, err := svc.ConfirmSettlement(context.Background(), alice.identity, refOf(alice, bob, ""))
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStateSettled, settled.State())
}

func TestIssueRejectsTakenAddress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)

	first := issue(t, svc, alice, bob, 100, "p1")

	_, err := svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: bob.identity, Balance: 5, ProjectID: "p1"})
	assert.ErrorIs(t, err, ErrAddressAlreadyInUse)

	stored, err := svc.FindInvoice(ctx, first.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), stored.Balance)

	// a different project id derives a different address
	other := issue(t, svc, alice, bob, 5, "p2")
	assert.NotEqual(t, first.Address, other.Address)
	// and so does swapping the roles
	swapped := issue(t, svc, bob, alice, 5, "p1")
	assert.NotEqual(t, first.Address, swapped.Address)
}

func TestIssueValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)

	_, err := svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: alice.identity, Balance: 1})
	assert.ErrorIs(t, err, ErrSameParty)

	_, err = svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: bob.identity, Balance: 1, Memo: strings.Repeat("m", 257)})
	assert.ErrorIs(t, err, ErrMemoTooLong)

	_, err = svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: bob.identity, Balance: 1, ProjectID: strings.Repeat("p", 65)})
	assert.ErrorIs(t, err, ErrProjectIDInvalid)

	_, err = svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: bob.identity, Balance: math.MaxInt64 + 1})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, bump, err := address.FindAddress(alice.identity, bob.identity, "nonce")
	require.NoError(t, err)
	wrong := bump - 1
	_, err = svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: bob.identity, Balance: 1, ProjectID: "nonce", Nonce: &wrong})
	assert.ErrorIs(t, err, ErrInvalidNonce)

	invoice, err := svc.Issue(ctx, alice.identity, IssueInvoiceRequest{Debtor: bob.identity, Balance: 1, ProjectID: "nonce", Nonce: &bump})
	require.NoError(t, err)
	assert.Equal(t, bump, invoice.Bump)

	invoices, err := svc.InvoicesFor(ctx, alice.identity, common.InvoiceRoleCreditor)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestPayPartialAndFull(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)
	fund(t, svc, bob, 1000)
	issue(t, svc, alice, bob, 100, "p1")
	ref := refOf(alice, bob, "p1")

	result, err := svc.Pay(ctx, bob.identity, ref, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), result.Transferred)
	assert.Equal(t, uint64(60), result.Invoice.Balance)
	assert.Equal(t, common.InvoiceStateOpen, result.Invoice.State())
	assert.Equal(t, int64(960), balanceOf(t, svc, bob))
	assert.Equal(t, int64(40), balanceOf(t, svc, alice))

	// overpaying only moves what is still owed
	result, err = svc.Pay(ctx, bob.identity, ref, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), result.Transferred)
	assert.Equal(t, uint64(0), result.Invoice.Balance)
	assert.Equal(t, common.InvoiceStateFullyPaid, result.Invoice.State())
	assert.Equal(t, int64(900), balanceOf(t, svc, bob))
	assert.Equal(t, int64(100), balanceOf(t, svc, alice))

	entries, err := svc.TransactionEntriesFor(ctx, bob.identity)
	require.NoError(t, err)
	// two payments and the deposit
	assert.Len(t, entries, 3)
	assert.Equal(t, result.Invoice.Address, entries[0].InvoiceAddress)
}

func TestPayFullyPaidAndZeroAmountAreNoops(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)
	fund(t, svc, bob, 100)
	issue(t, svc, alice, bob, 50, "p1")
	ref := refOf(alice, bob, "p1")

	result, err := svc.Pay(ctx, bob.identity, ref, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.Transferred)
	assert.Equal(t, uint64(50), result.Invoice.Balance)

	_, err = svc.Pay(ctx, bob.identity, ref, 50)
	require.NoError(t, err)

	result, err = svc.Pay(ctx, bob.identity, ref, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.Transferred)
	assert.Equal(t, int64(50), balanceOf(t, svc, bob))
	assert.Equal(t, int64(50), balanceOf(t, svc, alice))
}

func TestPayInsufficientFunds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)
	fund(t, svc, bob, 30)
	invoice := issue(t, svc, alice, bob, 100, "p1")

	_, err := svc.Pay(ctx, bob.identity, refOf(alice, bob, "p1"), 40)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	stored, err := svc.FindInvoice(ctx, invoice.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), stored.Balance)
	assert.Equal(t, int64(30), balanceOf(t, svc, bob))
	assert.Equal(t, int64(0), balanceOf(t, svc, alice))

	// paying what the debtor can afford still works
	result, err := svc.Pay(ctx, bob.identity, refOf(alice, bob, "p1"), 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), result.Invoice.Balance)
}

func TestPayAuthorization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob, mallory := newParty(t), newParty(t), newParty(t)
	fund(t, svc, alice, 100)
	fund(t, svc, mallory, 100)
	issue(t, svc, alice, bob, 50, "p1")

	_, err := svc.Pay(ctx, alice.identity, refOf(alice, bob, "p1"), 10)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Pay(ctx, mallory.identity, refOf(alice, bob, "p1"), 10)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// a ref naming mallory derives an address nobody issued
	_, err = svc.Pay(ctx, mallory.identity, refOf(alice, mallory, "p1"), 10)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	assert.Equal(t, int64(100), balanceOf(t, svc, alice))
	assert.Equal(t, int64(100), balanceOf(t, svc, mallory))
}

func TestConfirmSettlement(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)
	fund(t, svc, bob, 100)
	issue(t, svc, alice, bob, 100, "p1")
	ref := refOf(alice, bob, "p1")

	_, err := svc.ConfirmSettlement(ctx, alice.identity, ref)
	assert.ErrorIs(t, err, ErrUnsettledConfirmAttempt)

	_, err = svc.Pay(ctx, bob.identity, ref, 100)
	require.NoError(t, err)

	_, err = svc.ConfirmSettlement(ctx, bob.identity, ref)
	assert.ErrorIs(t, err, ErrUnauthorized)

	clock.Set(time.Unix(1700000500, 0))
	invoice, err := svc.ConfirmSettlement(ctx, alice.identity, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000500), invoice.ConfirmedAt)
	assert.Equal(t, common.InvoiceStateSettled, invoice.State())

	clock.Set(time.Unix(1700000900, 0))
	_, err = svc.ConfirmSettlement(ctx, alice.identity, ref)
	assert.ErrorIs(t, err, ErrAlreadySettled)

	_, err = svc.Pay(ctx, bob.identity, ref, 1)
	assert.ErrorIs(t, err, ErrAlreadySettled)

	stored, err := svc.FindInvoice(ctx, invoice.Address)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000500), stored.ConfirmedAt)
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice, bob := newParty(t), newParty(t)
	fund(t, svc, bob, 1000)
	issue(t, svc, alice, bob, 55, "p1")
	ref := refOf(alice, bob, "p1")

	var wg sync.WaitGroup
	var mu sync.Mutex
	transferred := uint64(0)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Pay(ctx, bob.identity, ref, 10)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			transferred += result.Transferred
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(55), transferred)
	assert.Equal(t, int64(945), balanceOf(t, svc, bob))
	assert.Equal(t, int64(55), balanceOf(t, svc, alice))
}
