package integration_tests

import (
	"encoding/json"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	TestSuite
	service *service.QuokkahubService
}

func (suite *AuthTestSuite) SetupSuite() {
	svc, err := QuokkahubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
	suite.wireEcho(svc)
}

func (suite *AuthTestSuite) TestLoginAndRefresh() {
	id := newTestIdentity(&suite.TestSuite)
	evt := id.sign(&suite.TestSuite, common.EventKindLogin, common.EventContentLogin, nostr.Tags{})
	rec := suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{"event": evt})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	tokens := &ExpectedAuthResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(tokens))

	// a refresh token is not an access token
	rec = suite.doRequest(http.MethodGet, "/v2/balance", tokens.RefreshToken, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	rec = suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{"refresh_token": tokens.RefreshToken})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	refreshed := &ExpectedAuthResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(refreshed))

	rec = suite.doRequest(http.MethodGet, "/v2/balance", refreshed.AccessToken, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	balance := &ExpectedBalanceResponse{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(balance))
	assert.Equal(suite.T(), id.identity.String(), balance.Identity)
	assert.Equal(suite.T(), int64(0), balance.Balance)
}

func (suite *AuthTestSuite) TestRejectsBadLoginEvents() {
	id := newTestIdentity(&suite.TestSuite)

	// wrong content
	evt := id.sign(&suite.TestSuite, common.EventKindLogin, "hello", nostr.Tags{})
	rec := suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{"event": evt})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	// stale
	evt = nostr.Event{
		PubKey:    id.identity.String(),
		CreatedAt: nostr.Timestamp(time.Now().Add(-time.Hour).Unix()),
		Kind:      common.EventKindLogin,
		Tags:      nostr.Tags{},
		Content:   common.EventContentLogin,
	}
	assert.NoError(suite.T(), evt.Sign(id.sk))
	rec = suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{"event": evt})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	// tampered
	evt = id.sign(&suite.TestSuite, common.EventKindLogin, common.EventContentLogin, nostr.Tags{})
	evt.PubKey = newTestIdentity(&suite.TestSuite).identity.String()
	rec = suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{"event": evt})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	rec = suite.doRequest(http.MethodPost, "/auth", "", map[string]interface{}{})
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *AuthTestSuite) TestCreateAccountIsIdempotent() {
	id := newTestIdentity(&suite.TestSuite)
	suite.login(id)
	var first, second map[string]interface{}
	rec := suite.doRequest(http.MethodPost, "/v2/accounts", id.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(&first))
	rec = suite.doRequest(http.MethodPost, "/v2/accounts", id.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(&second))
	assert.Equal(suite.T(), first["id"], second["id"])
	assert.Equal(suite.T(), id.identity.Npub(), first["npub"])
}

func (suite *AuthTestSuite) TestHealth() {
	rec := suite.doRequest(http.MethodGet, "/v2/health", "", nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
