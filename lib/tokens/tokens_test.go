package tokens

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("supersecret")

func newIdentity(t *testing.T) security.Identity {
	t.Helper()
	pk, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	return security.MustParseIdentity(pk)
}

func serve(mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func TestAccessTokenSetsIdentity(t *testing.T) {
	identity := newIdentity(t)
	token, err := GenerateAccessToken(secret, 3600, identity)
	require.NoError(t, err)

	rec, c := serve(Middleware(secret), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, identity, c.Get(security.ContextKeyIdentity))
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	identity := newIdentity(t)

	refresh, err := GenerateRefreshToken(secret, 3600, identity)
	require.NoError(t, err)
	rec, _ := serve(Middleware(secret), "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := GenerateAccessToken(secret, -10, identity)
	require.NoError(t, err)
	rec, _ = serve(Middleware(secret), "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	foreign, err := GenerateAccessToken([]byte("other secret"), 3600, identity)
	require.NoError(t, err)
	rec, _ = serve(Middleware(secret), "Bearer "+foreign)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(Middleware(secret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromRefreshToken(t *testing.T) {
	identity := newIdentity(t)

	refresh, err := GenerateRefreshToken(secret, 3600, identity)
	require.NoError(t, err)
	parsed, err := IdentityFromRefreshToken(secret, refresh)
	require.NoError(t, err)
	assert.Equal(t, identity, parsed)

	access, err := GenerateAccessToken(secret, 3600, identity)
	require.NoError(t, err)
	_, err = IdentityFromRefreshToken(secret, access)
	assert.ErrorIs(t, err, ErrRefreshTokenExpected)
}

func TestAdminTokenMiddleware(t *testing.T) {
	rec, _ := serve(AdminTokenMiddleware("admintoken"), "Bearer admintoken")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(AdminTokenMiddleware("admintoken"), "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(AdminTokenMiddleware(""), "Bearer anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
