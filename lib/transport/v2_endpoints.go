package transport

import (
	"github.com/labstack/echo/v4"
	v2controllers "github.com/quokkahub/quokkahub.go/controllers_v2"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/quokkahub/quokkahub.go/lib/service"
)

func RegisterV2Endpoints(svc *service.QuokkahubService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, adminMw echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.POST("/auth", v2controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)
	e.GET("/v2/health", v2controllers.NewHealthController(svc).CheckHealth)
	// authenticates with the token query parameter
	e.GET("/v2/invoices/stream", v2controllers.NewInvoiceStreamController(svc).StreamInvoices, logMw)

	e.POST("/v2/admin/deposits", v2controllers.NewDepositController(svc).Deposit, strictRateLimitMiddleware, adminMw, logMw)

	invoiceCtrl := v2controllers.NewInvoiceController(svc)
	secured.POST("/v2/accounts", v2controllers.NewCreateAccountController(svc).CreateAccount)
	secured.POST("/v2/invoices", invoiceCtrl.AddInvoice)
	secured.GET("/v2/invoices/incoming", invoiceCtrl.GetIncomingInvoices)
	secured.GET("/v2/invoices/outgoing", invoiceCtrl.GetOutgoingInvoices)
	secured.GET("/v2/invoices/:address", invoiceCtrl.GetInvoice)
	secured.GET("/v2/invoices/:address/qr", invoiceCtrl.GetInvoiceQR)
	securedWithStrictRateLimit.POST("/v2/invoices/:address/payments", v2controllers.NewPayInvoiceController(svc).PayInvoice)
	securedWithStrictRateLimit.POST("/v2/invoices/:address/settlement", v2controllers.NewSettlementController(svc).ConfirmSettlement)
	secured.GET("/v2/balance", v2controllers.NewBalanceController(svc).Balance)
	secured.GET("/v2/transactions", v2controllers.NewTransactionsController(svc).GetTransactions)
}

// NostrGateway accepts signed command events. The signature is the only
// credential, no token is needed.
func NostrGateway(svc *service.QuokkahubService, e *echo.Echo, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	nostrEventCtrl := v2controllers.NewNostrController(svc)
	validateNostrPayload := e.Group("", security.SignedEventMiddleware(0), strictRateLimitMiddleware, logMw)
	validateNostrPayload.POST("/v2/event", nostrEventCtrl.HandleNostrEvent)
}
