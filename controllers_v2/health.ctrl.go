package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/quokkahub/quokkahub.go/lib/responses"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

type HealthController struct {
	svc *service.QuokkahubService
}

func NewHealthController(svc *service.QuokkahubService) *HealthController {
	return &HealthController{svc: svc}
}

type HealthResponse struct {
	Result string `json:"result"`
}

// CheckHealth godoc
// @Summary      Check system health
// @Description  Reports OK once the database answers
// @Accept       json
// @Produce      json
// @Tags         Health
// @Success      200  {object}  HealthResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/health [get]
func (controller *HealthController) CheckHealth(c echo.Context) error {
	if err := controller.svc.DB.PingContext(c.Request().Context()); err != nil {
		c.Logger().Errorf("Database ping failed: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, &HealthResponse{
		Result: "OK",
	})
}
