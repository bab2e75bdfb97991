package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

// DepositController credits accounts from outside the ledger. Admin only.
type DepositController struct {
	svc *service.QuokkahubService
}

func NewDepositController(svc *service.QuokkahubService) *DepositController {
	return &DepositController{svc: svc}
}

type DepositRequestBody struct {
	Identity string `json:"identity" validate:"required,identity"`
	Amount   uint64 `json:"amount" validate:"gt=0"`
}

type DepositResponseBody struct {
	Identity string           `json:"identity"`
	Balance  int64            `json:"balance"`
	Entry    TransactionEntry `json:"entry"`
}

// Deposit godoc
// @Summary      Deposit value
// @Description  Credits an identity's account from the external account
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        DepositRequestBody  body      DepositRequestBody  True  "Deposit"
// @Success      200                 {object}  DepositResponseBody
// @Failure      400                 {object}  responses.ErrorResponse
// @Failure      500                 {object}  responses.ErrorResponse
// @Router       /v2/admin/deposits [post]
// @Security     AdminToken
func (controller *DepositController) Deposit(c echo.Context) error {
	var body DepositRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load deposit request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid deposit request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	identity := security.MustParseIdentity(body.Identity)

	entry, err := controller.svc.Deposit(c.Request().Context(), identity, body.Amount)
	if err != nil {
		return responses.Respond(c, err)
	}
	balance, err := controller.svc.CurrentBalance(c.Request().Context(), identity)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &DepositResponseBody{
		Identity: identity.String(),
		Balance:  balance,
		Entry:    toTransactionEntry(*entry),
	})
}
