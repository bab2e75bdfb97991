package integration_tests

import (
	"encoding/json"
	"log"
	"net/http"
	"testing"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InvoiceTestSuite struct {
	TestSuite
	service  *service.QuokkahubService
	creditor *testIdentity
	debtor   *testIdentity
	stranger *testIdentity
}

func (suite *InvoiceTestSuite) SetupSuite() {
	svc, err := QuokkahubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
	suite.wireEcho(svc)
}

func (suite *InvoiceTestSuite) SetupTest() {
	suite.creditor = newTestIdentity(&suite.TestSuite)
	suite.debtor = newTestIdentity(&suite.TestSuite)
	suite.stranger = newTestIdentity(&suite.TestSuite)
	for _, id := range []*testIdentity{suite.creditor, suite.debtor, suite.stranger} {
		suite.login(id)
	}
	suite.deposit(suite.debtor, 1000)
}

func (suite *InvoiceTestSuite) TearDownTest() {
	for _, table := range []string{"transaction_entries", "invoices", "accounts", "events"} {
		assert.NoError(suite.T(), clearTable(suite.service, table))
	}
}

func (suite *InvoiceTestSuite) TestInvoiceLifecycle() {
	invoice := suite.addInvoice(suite.creditor, suite.debtor, 300, "website")
	assert.Equal(suite.T(), common.InvoiceStateOpen, invoice.State)
	assert.Equal(suite.T(), uint64(300), invoice.Balance)
	assert.Equal(suite.T(), suite.creditor.identity.String(), invoice.Creditor)
	assert.Equal(suite.T(), suite.debtor.identity.String(), invoice.Debtor)
	assert.NotZero(suite.T(), invoice.IssuedAt)

	// partial payment
	rec := suite.payInvoice(suite.debtor, invoice.Address, 100)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	payResponse := &ExpectedPayInvoiceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(payResponse))
	assert.Equal(suite.T(), uint64(100), payResponse.Transferred)
	assert.Equal(suite.T(), uint64(200), payResponse.Invoice.Balance)
	assert.Equal(suite.T(), common.InvoiceStateOpen, payResponse.Invoice.State)

	// confirming before the invoice is paid off fails
	rec = suite.doRequest(http.MethodPost, "/v2/invoices/"+invoice.Address+"/settlement", suite.creditor.token, nil)
	assert.Equal(suite.T(), responses.UnsettledConfirmAttemptError.Code, suite.checkErrResponse(rec, http.StatusConflict).Code)

	// overpayment is capped at the outstanding balance
	rec = suite.payInvoice(suite.debtor, invoice.Address, 500)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	payResponse = &ExpectedPayInvoiceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(payResponse))
	assert.Equal(suite.T(), uint64(200), payResponse.Transferred)
	assert.Equal(suite.T(), uint64(0), payResponse.Invoice.Balance)
	assert.Equal(suite.T(), common.InvoiceStateFullyPaid, payResponse.Invoice.State)

	assert.Equal(suite.T(), int64(700), suite.balanceOf(suite.debtor))
	assert.Equal(suite.T(), int64(300), suite.balanceOf(suite.creditor))

	rec = suite.doRequest(http.MethodPost, "/v2/invoices/"+invoice.Address+"/settlement", suite.creditor.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	settled := &ExpectedInvoice{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(settled))
	assert.Equal(suite.T(), common.InvoiceStateSettled, settled.State)
	assert.NotZero(suite.T(), settled.ConfirmedAt)

	// settlement is final
	rec = suite.doRequest(http.MethodPost, "/v2/invoices/"+invoice.Address+"/settlement", suite.creditor.token, nil)
	assert.Equal(suite.T(), responses.AlreadySettledError.Code, suite.checkErrResponse(rec, http.StatusConflict).Code)
	rec = suite.payInvoice(suite.debtor, invoice.Address, 1)
	assert.Equal(suite.T(), responses.AlreadySettledError.Code, suite.checkErrResponse(rec, http.StatusConflict).Code)
}

func (suite *InvoiceTestSuite) TestAddressCanOnlyBeUsedOnce() {
	suite.addInvoice(suite.creditor, suite.debtor, 10, "retainer")
	rec := suite.doRequest(http.MethodPost, "/v2/invoices", suite.creditor.token, &ExpectedAddInvoiceRequestBody{
		Debtor:    suite.debtor.identity.String(),
		Amount:    20,
		ProjectID: "retainer",
	})
	assert.Equal(suite.T(), responses.AddressAlreadyInUseError.Code, suite.checkErrResponse(rec, http.StatusConflict).Code)

	// another project id derives another address
	other := suite.addInvoice(suite.creditor, suite.debtor, 20, "retainer-2")
	assert.Equal(suite.T(), uint64(20), other.Balance)
}

func (suite *InvoiceTestSuite) TestAddInvoiceValidation() {
	rec := suite.doRequest(http.MethodPost, "/v2/invoices", suite.creditor.token, &ExpectedAddInvoiceRequestBody{
		Debtor: "not an identity",
		Amount: 10,
	})
	suite.checkErrResponse(rec, http.StatusBadRequest)

	rec = suite.doRequest(http.MethodPost, "/v2/invoices", suite.creditor.token, &ExpectedAddInvoiceRequestBody{
		Debtor: suite.creditor.identity.String(),
		Amount: 10,
	})
	suite.checkErrResponse(rec, http.StatusBadRequest)

	rec = suite.doRequest(http.MethodPost, "/v2/invoices", "", &ExpectedAddInvoiceRequestBody{
		Debtor: suite.debtor.identity.String(),
		Amount: 10,
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *InvoiceTestSuite) TestOnlyPartiesMayActOnAnInvoice() {
	invoice := suite.addInvoice(suite.creditor, suite.debtor, 50, "")
	suite.deposit(suite.stranger, 100)

	rec := suite.payInvoice(suite.stranger, invoice.Address, 50)
	assert.Equal(suite.T(), responses.UnauthorizedError.Code, suite.checkErrResponse(rec, http.StatusForbidden).Code)
	rec = suite.payInvoice(suite.creditor, invoice.Address, 50)
	suite.checkErrResponse(rec, http.StatusForbidden)

	rec = suite.doRequest(http.MethodGet, "/v2/invoices/"+invoice.Address, suite.stranger.token, nil)
	suite.checkErrResponse(rec, http.StatusForbidden)

	assert.Equal(suite.T(), http.StatusOK, suite.payInvoice(suite.debtor, invoice.Address, 50).Code)
	rec = suite.doRequest(http.MethodPost, "/v2/invoices/"+invoice.Address+"/settlement", suite.debtor.token, nil)
	suite.checkErrResponse(rec, http.StatusForbidden)
	assert.Equal(suite.T(), int64(100), suite.balanceOf(suite.stranger))
}

func (suite *InvoiceTestSuite) TestPayWithoutFunds() {
	invoice := suite.addInvoice(suite.creditor, suite.debtor, 5000, "big")
	rec := suite.payInvoice(suite.debtor, invoice.Address, 5000)
	assert.Equal(suite.T(), responses.NotEnoughBalanceError.Code, suite.checkErrResponse(rec, http.StatusBadRequest).Code)
	assert.Equal(suite.T(), int64(1000), suite.balanceOf(suite.debtor))

	rec = suite.doRequest(http.MethodGet, "/v2/invoices/"+invoice.Address, suite.debtor.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	unchanged := &ExpectedInvoice{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(unchanged))
	assert.Equal(suite.T(), uint64(5000), unchanged.Balance)
}

func (suite *InvoiceTestSuite) TestUnknownAndMalformedAddresses() {
	invoice := suite.addInvoice(suite.creditor, suite.debtor, 10, "gone")
	assert.NoError(suite.T(), clearTable(suite.service, "invoices"))

	rec := suite.payInvoice(suite.debtor, invoice.Address, 10)
	assert.Equal(suite.T(), responses.InvoiceNotFoundError.Code, suite.checkErrResponse(rec, http.StatusNotFound).Code)

	rec = suite.payInvoice(suite.debtor, "inv1garbage", 10)
	suite.checkErrResponse(rec, http.StatusBadRequest)
}

func (suite *InvoiceTestSuite) TestListsAndTransactions() {
	suite.addInvoice(suite.creditor, suite.debtor, 10, "a")
	second := suite.addInvoice(suite.creditor, suite.debtor, 20, "b")
	assert.Equal(suite.T(), http.StatusOK, suite.payInvoice(suite.debtor, second.Address, 20).Code)

	rec := suite.doRequest(http.MethodGet, "/v2/invoices/incoming", suite.creditor.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	incoming := &ExpectedInvoicesResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(incoming))
	assert.Len(suite.T(), incoming.Invoices, 2)

	rec = suite.doRequest(http.MethodGet, "/v2/invoices/outgoing", suite.debtor.token, nil)
	outgoing := &ExpectedInvoicesResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(outgoing))
	assert.Len(suite.T(), outgoing.Invoices, 2)

	rec = suite.doRequest(http.MethodGet, "/v2/invoices/outgoing", suite.creditor.token, nil)
	none := &ExpectedInvoicesResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(none))
	assert.Empty(suite.T(), none.Invoices)

	rec = suite.doRequest(http.MethodGet, "/v2/transactions", suite.debtor.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	txs := &ExpectedTransactionsResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(txs))
	// the deposit and the payment
	assert.Len(suite.T(), txs.Transactions, 2)
	assert.Equal(suite.T(), second.Address, txs.Transactions[0].InvoiceAddress)
}

func (suite *InvoiceTestSuite) TestInvoiceQR() {
	invoice := suite.addInvoice(suite.creditor, suite.debtor, 10, "qr")
	rec := suite.doRequest(http.MethodGet, "/v2/invoices/"+invoice.Address+"/qr", suite.debtor.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(suite.T(), []byte("\x89PNG"), rec.Body.Bytes()[:4])
}

func (suite *InvoiceTestSuite) TestDepositNeedsAdminToken() {
	rec := suite.doRequest(http.MethodPost, "/v2/admin/deposits", suite.debtor.token, map[string]interface{}{
		"identity": suite.debtor.identity.String(),
		"amount":   1,
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(suite.T(), int64(1000), suite.balanceOf(suite.debtor))
}

func TestInvoiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceTestSuite))
}
