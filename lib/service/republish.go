package service

import (
	"context"
	"time"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/uptrace/bun"
)

// InvoiceEventsBetween rebuilds the latest event of every invoice issued or
// updated in [from, to), oldest first. Used to replay events to consumers
// that missed them.
func (svc *QuokkahubService) InvoiceEventsBetween(ctx context.Context, from, to time.Time) ([]models.InvoiceEvent, error) {
	invoices := []models.Invoice{}
	err := svc.DB.NewSelect().
		Model(&invoices).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("issued_at >= ? AND issued_at < ?", from.Unix(), to.Unix()).
				WhereOr("updated_at >= ? AND updated_at < ?", from, to)
		}).
		OrderExpr("issued_at ASC, address ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]models.InvoiceEvent, 0, len(invoices))
	for _, invoice := range invoices {
		event := models.InvoiceEvent{
			Invoice:   invoice,
			State:     invoice.State(),
			CreatedAt: svc.now(),
		}
		switch {
		case invoice.IsSettled():
			event.Type = common.InvoiceEventSettled
		case invoice.Paid() == 0:
			event.Type = common.InvoiceEventIssued
			event.Amount = invoice.Balance
		default:
			event.Type = common.InvoiceEventPaid
			event.Amount = invoice.Paid()
		}
		events = append(events, event)
	}
	return events, nil
}
