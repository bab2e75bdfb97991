package service

import (
	"testing"

	"github.com/quokkahub/quokkahub.go/db/models"
	"github.com/stretchr/testify/assert"
)

func TestPubsub(t *testing.T) {
	ps := NewPubsub()
	ch := make(chan models.InvoiceEvent, 1)
	subId := ps.Subscribe("paid", ch)
	assert.Equal(t, 1, ps.CountSubscriptions("paid"))

	assert.Equal(t, 0, ps.Publish("paid", models.InvoiceEvent{Type: "paid"}))
	// the channel is full, the second event is dropped instead of blocking
	assert.Equal(t, 1, ps.Publish("paid", models.InvoiceEvent{Type: "paid"}))
	assert.Equal(t, 0, ps.Publish("issued", models.InvoiceEvent{Type: "issued"}))

	event := <-ch
	assert.Equal(t, "paid", event.Type)

	ps.Unsubscribe(subId, "paid")
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, ps.CountSubscriptions("paid"))
}
