package tokens

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/quokkahub/quokkahub.go/lib/security"
)

const contextKeyJwt = "IdentityJwt"

type jwtCustomClaims struct {
	Identity  string `json:"identity"`
	IsRefresh bool   `json:"isRefresh"`

	jwt.StandardClaims
}

var ErrRefreshTokenExpected = errors.New("expected a refresh token")

// Middleware accepts access tokens only and stores the identity they were
// issued to on the context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	config := middleware.DefaultJWTConfig
	config.ContextKey = contextKeyJwt
	config.SigningKey = secret
	config.ErrorHandlerWithContext = func(err error, c echo.Context) error {
		c.Logger().Debugf("JWT authentication failed: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"error":   true,
			"code":    1,
			"message": "bad auth",
		})
	}
	config.ParseTokenFunc = func(auth string, c echo.Context) (interface{}, error) {
		claims, err := parseClaims(auth, secret)
		if err != nil {
			return nil, err
		}
		if claims.IsRefresh {
			return nil, errors.New("refresh tokens can not be used for authentication")
		}
		identity, err := security.ParseIdentity(claims.Identity)
		if err != nil {
			return nil, err
		}
		c.Set(security.ContextKeyIdentity, identity)
		return claims, nil
	}
	return middleware.JWTWithConfig(config)
}

func parseClaims(tokenString string, secret []byte) (*jwtCustomClaims, error) {
	claims := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateAccessToken : Generate Access Token
func GenerateAccessToken(secret []byte, expiryInSeconds int, identity security.Identity) (string, error) {
	return generateToken(secret, expiryInSeconds, identity, false)
}

// GenerateRefreshToken : Generate Refresh Token
func GenerateRefreshToken(secret []byte, expiryInSeconds int, identity security.Identity) (string, error) {
	return generateToken(secret, expiryInSeconds, identity, true)
}

func generateToken(secret []byte, expiryInSeconds int, identity security.Identity, isRefresh bool) (string, error) {
	claims := &jwtCustomClaims{
		Identity:  identity.String(),
		IsRefresh: isRefresh,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Second * time.Duration(expiryInSeconds)).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

// IdentityFromRefreshToken validates a refresh token and returns its identity.
func IdentityFromRefreshToken(secret []byte, refreshToken string) (security.Identity, error) {
	claims, err := parseClaims(refreshToken, secret)
	if err != nil {
		return security.Identity{}, err
	}
	if !claims.IsRefresh {
		return security.Identity{}, ErrRefreshTokenExpected
	}
	return security.ParseIdentity(claims.Identity)
}

// IdentityFromAccessToken validates an access token passed outside of the
// Authorization header, e.g. as a query parameter of a websocket upgrade.
func IdentityFromAccessToken(secret []byte, accessToken string) (security.Identity, error) {
	claims, err := parseClaims(accessToken, secret)
	if err != nil {
		return security.Identity{}, err
	}
	if claims.IsRefresh {
		return security.Identity{}, errors.New("refresh tokens can not be used for authentication")
	}
	return security.ParseIdentity(claims.Identity)
}
