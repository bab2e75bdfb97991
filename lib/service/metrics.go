package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invoiceOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quokkahub",
		Name:      "invoice_operations_total",
		Help:      "Invoice state machine operations by outcome.",
	}, []string{"operation", "result"})

	valueTransferred = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quokkahub",
		Name:      "value_transferred_total",
		Help:      "Units of value moved from debtors to creditors by invoice payments.",
	})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAddressAlreadyInUse):
		return "address_in_use"
	case errors.Is(err, ErrUnsettledConfirmAttempt):
		return "unsettled"
	case errors.Is(err, ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, ErrInvoiceNotFound):
		return "not_found"
	case errors.Is(err, ErrInvoiceLocked):
		return "locked"
	default:
		return "error"
	}
}
