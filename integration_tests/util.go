package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db"
	"github.com/quokkahub/quokkahub.go/db/migrations"
	"github.com/quokkahub/quokkahub.go/lib"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/quokkahub/quokkahub.go/lib/tokens"
	"github.com/quokkahub/quokkahub.go/lib/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/bun/migrate"
)

const adminToken = "admin-secret"

// QuokkahubTestServiceInit runs against an in-memory sqlite database unless
// DATABASE_URI points somewhere else.
func QuokkahubTestServiceInit() (svc *service.QuokkahubService, err error) {
	dbUri, ok := os.LookupEnv("DATABASE_URI")
	if !ok {
		dbUri = "file::memory:"
	}
	c := &service.Config{
		DatabaseUri:             dbUri,
		DatabaseMaxConns:        1,
		DatabaseMaxIdleConns:    1,
		DatabaseConnMaxLifetime: 10,
		JWTSecret:               []byte("SECRET"),
		JWTAccessTokenExpiry:    3600,
		JWTRefreshTokenExpiry:   3600,
		LoginEventMaxAge:        300,
		AdminToken:              adminToken,
		DefaultRateLimit:        1000,
		StrictRateLimit:         1000,
		BurstRateLimit:          1000,
		MemoMaxLength:           256,
		ProjectIDMaxLength:      64,
		InvoiceLockTimeout:      10,
		RabbitMQInvoiceExchange: "test_quokkahub_invoice",
		RabbitMQCommandExchange: "test_quokkahub_command",
		RabbitMQCommandQueue:    "test_quokkahub_command_consumer",
	}

	dbConn, err := db.Open(c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	_, err = migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	logger := lib.Logger(c.LogFilePath)
	svc = &service.QuokkahubService{
		Config:        c,
		DB:            dbConn,
		Logger:        logger,
		Transfers:     &service.LedgerTransferrer{},
		Locker:        service.NewMemoryLocker(),
		InvoicePubSub: service.NewPubsub(),
	}
	return svc, nil
}

func clearTable(svc *service.QuokkahubService, tableName string) error {
	_, err := svc.DB.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	return err
}

type TestSuite struct {
	suite.Suite
	echo *echo.Echo
}

// wireEcho registers every route the server exposes on a fresh echo instance.
func (suite *TestSuite) wireEcho(svc *service.QuokkahubService) {
	e := transport.InitEcho(svc.Config, svc.Logger)
	logMw := transport.CreateLoggingMiddleware(svc.Logger)
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(svc.Config.StrictRateLimit, svc.Config.BurstRateLimit)
	secured := e.Group("", tokens.Middleware(svc.Config.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(svc.Config.JWTSecret), strictRateLimitMiddleware, logMw)
	transport.RegisterV2Endpoints(svc, e, secured, securedWithStrictRateLimit, strictRateLimitMiddleware, tokens.AdminTokenMiddleware(svc.Config.AdminToken), logMw)
	transport.NostrGateway(svc, e, strictRateLimitMiddleware, logMw)
	suite.echo = e
}

type testIdentity struct {
	sk       string
	identity security.Identity
	token    string
}

func newTestIdentity(suite *TestSuite) *testIdentity {
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	assert.NoError(suite.T(), err)
	return &testIdentity{sk: sk, identity: security.MustParseIdentity(pk)}
}

func (id *testIdentity) sign(suite *TestSuite, kind int, content string, tags nostr.Tags) nostr.Event {
	evt := nostr.Event{
		PubKey:    id.identity.String(),
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	}
	assert.NoError(suite.T(), evt.Sign(id.sk))
	return evt
}

// login authenticates with a signed login event and keeps the access token.
func (suite *TestSuite) login(id *testIdentity) {
	evt := id.sign(suite, common.EventKindLogin, common.EventContentLogin, nostr.Tags{})
	rec := suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{"event": evt})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	authResponse := &ExpectedAuthResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(authResponse))
	assert.NotEmpty(suite.T(), authResponse.AccessToken)
	id.token = authResponse.AccessToken
}

func (suite *TestSuite) doRequest(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *TestSuite) checkErrResponse(rec *httptest.ResponseRecorder, status int) *responses.ErrorResponse {
	errorResponse := &responses.ErrorResponse{}
	assert.Equal(suite.T(), status, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(errorResponse))
	return errorResponse
}

func (suite *TestSuite) deposit(id *testIdentity, amount uint64) {
	rec := httptest.NewRecorder()
	var buf bytes.Buffer
	assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(map[string]interface{}{
		"identity": id.identity.String(),
		"amount":   amount,
	}))
	req := httptest.NewRequest(http.MethodPost, "/v2/admin/deposits", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", adminToken))
	suite.echo.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *TestSuite) addInvoice(creditor, debtor *testIdentity, amount uint64, projectID string) *ExpectedInvoice {
	rec := suite.doRequest(http.MethodPost, "/v2/invoices", creditor.token, &ExpectedAddInvoiceRequestBody{
		Debtor:    debtor.identity.Npub(),
		Amount:    amount,
		ProjectID: projectID,
	})
	invoice := &ExpectedInvoice{}
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(invoice))
	return invoice
}

func (suite *TestSuite) payInvoice(debtor *testIdentity, address string, amount uint64) *httptest.ResponseRecorder {
	return suite.doRequest(http.MethodPost, "/v2/invoices/"+address+"/payments", debtor.token, &ExpectedPayInvoiceRequestBody{Amount: amount})
}

func (suite *TestSuite) balanceOf(id *testIdentity) int64 {
	rec := suite.doRequest(http.MethodGet, "/v2/balance", id.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	balance := &ExpectedBalanceResponse{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(balance))
	return balance.Balance
}
