package models

import "time"

// InvoiceEvent is emitted after a state transition of an invoice was committed.
// It is not stored, it is fanned out to webhooks and the message broker.
type InvoiceEvent struct {
	Type      string    `json:"type"`
	Invoice   Invoice   `json:"invoice"`
	State     string    `json:"state"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
