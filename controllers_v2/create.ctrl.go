package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

// CreateAccountController : Create account controller struct
type CreateAccountController struct {
	svc *service.QuokkahubService
}

func NewCreateAccountController(svc *service.QuokkahubService) *CreateAccountController {
	return &CreateAccountController{svc: svc}
}

type CreateAccountResponseBody struct {
	ID       int64  `json:"id"`
	Identity string `json:"identity"`
	Npub     string `json:"npub"`
	Balance  int64  `json:"balance"`
}

// CreateAccount godoc
// @Summary      Create an account
// @Description  Opens the ledger account of the authenticated identity. Calling it again returns the existing account.
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  CreateAccountResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/accounts [post]
// @Security     OAuth2Password
func (controller *CreateAccountController) CreateAccount(c echo.Context) error {
	identity := identityFrom(c)
	account, err := controller.svc.CreateAccount(c.Request().Context(), identity)
	if err != nil {
		c.Logger().Errorf("Failed to create account for identity:%s error: %v", identity, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, &CreateAccountResponseBody{
		ID:       account.ID,
		Identity: account.Identity,
		Npub:     identity.Npub(),
		Balance:  account.Balance,
	})
}
