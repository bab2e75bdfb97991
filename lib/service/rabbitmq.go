package service

import (
	"context"
	"encoding/json"
	"io"

	"github.com/quokkahub/quokkahub.go/common"
	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/quokkahub/quokkahub.go/lib/security"
)

// InvoiceEventPayload is what webhooks and the message broker receive.
type InvoiceEventPayload struct {
	Type        string `json:"type"`
	Address     string `json:"address"`
	ProjectID   string `json:"project_id"`
	Creditor    string `json:"creditor"`
	Debtor      string `json:"debtor"`
	Amount      uint64 `json:"amount"`
	Balance     uint64 `json:"balance"`
	Transferred uint64 `json:"transferred"`
	Memo        string `json:"memo"`
	State       string `json:"state"`
	IssuedAt    int64  `json:"issued_at"`
	ConfirmedAt int64  `json:"confirmed_at"`
	CreatedAt   int64  `json:"created_at"`
}

func convertPayload(event models.InvoiceEvent) InvoiceEventPayload {
	return InvoiceEventPayload{
		Type:        event.Type,
		Address:     event.Invoice.Address,
		ProjectID:   event.Invoice.ProjectID,
		Creditor:    npubOf(event.Invoice.Creditor),
		Debtor:      npubOf(event.Invoice.Debtor),
		Amount:      event.Invoice.Amount,
		Balance:     event.Invoice.Balance,
		Transferred: event.Amount,
		Memo:        event.Invoice.Memo,
		State:       event.State,
		IssuedAt:    event.Invoice.IssuedAt,
		ConfirmedAt: event.Invoice.ConfirmedAt,
		CreatedAt:   event.CreatedAt.Unix(),
	}
}

func npubOf(hexIdentity string) string {
	id, err := security.ParseIdentity(hexIdentity)
	if err != nil {
		return hexIdentity
	}
	return id.Npub()
}

func (svc *QuokkahubService) EncodeInvoiceEventPayload(ctx context.Context, w io.Writer, event models.InvoiceEvent) error {
	return json.NewEncoder(w).Encode(convertPayload(event))
}

// SubscribeInvoiceEvents subscribes a buffered channel to every invoice event.
func (svc *QuokkahubService) SubscribeInvoiceEvents() (chan models.InvoiceEvent, func(), error) {
	svc.setDefaults()
	events := make(chan models.InvoiceEvent, 100)
	subId := svc.InvoicePubSub.Subscribe(common.InvoiceTopicAll, events)
	return events, func() { svc.InvoicePubSub.Unsubscribe(subId, common.InvoiceTopicAll) }, nil
}
