package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
	"github.com/quokkahub/quokkahub.go/lib/tokens"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.QuokkahubService
}

func NewAuthController(svc *service.QuokkahubService) *AuthController {
	return &AuthController{svc: svc}
}

// AuthRequestBody carries either a signed login event or a refresh token.
type AuthRequestBody struct {
	Event        *nostr.Event `json:"event"`
	RefreshToken string       `json:"refresh_token"`
}

type AuthResponseBody struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
}

// Auth godoc
// @Summary      Authenticate
// @Description  Exchange a signed login event or a refresh token for a new pair of tokens
// @Accept       json
// @Produce      json
// @Tags         Auth
// @Param        AuthRequestBody  body      AuthRequestBody  True  "Login event or refresh token"
// @Success      200              {object}  AuthResponseBody
// @Failure      400              {object}  responses.ErrorResponse
// @Failure      401              {object}  responses.ErrorResponse
// @Router       /auth [post]
func (controller *AuthController) Auth(c echo.Context) error {
	var body AuthRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load auth request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var (
		identity security.Identity
		err      error
	)
	switch {
	case body.Event != nil:
		identity, err = security.VerifyLoginEvent(*body.Event, controller.svc.Now(), controller.svc.Config.LoginEventMaxAgeDuration())
	case body.RefreshToken != "":
		identity, err = tokens.IdentityFromRefreshToken(controller.svc.Config.JWTSecret, body.RefreshToken)
	default:
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err != nil {
		c.Logger().Debugf("Authentication failed: %v", err)
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	accessToken, err := tokens.GenerateAccessToken(controller.svc.Config.JWTSecret, controller.svc.Config.JWTAccessTokenExpiry, identity)
	if err != nil {
		return err
	}
	refreshToken, err := tokens.GenerateRefreshToken(controller.svc.Config.JWTSecret, controller.svc.Config.JWTRefreshTokenExpiry, identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{
		RefreshToken: refreshToken,
		AccessToken:  accessToken,
	})
}
