package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

// BalanceController : BalanceController struct
type BalanceController struct {
	svc *service.QuokkahubService
}

func NewBalanceController(svc *service.QuokkahubService) *BalanceController {
	return &BalanceController{svc: svc}
}

type BalanceResponse struct {
	Identity string `json:"identity"`
	Balance  int64  `json:"balance"`
}

// Balance godoc
// @Summary      Retrieve balance
// @Description  Spendable balance of the authenticated identity
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  BalanceResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/balance [get]
// @Security     OAuth2Password
func (controller *BalanceController) Balance(c echo.Context) error {
	identity := identityFrom(c)
	balance, err := controller.svc.CurrentBalance(c.Request().Context(), identity)
	if err != nil {
		c.Logger().Errorf("Error fetching balance for identity:%s error: %v", identity, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, &BalanceResponse{
		Identity: identity.String(),
		Balance:  balance,
	})
}
