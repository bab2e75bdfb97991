package service

import (
	"sync"

	"github.com/labstack/gommon/random"
	"github.com/quokkahub/quokkahub.go/db/models"
)

type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan models.InvoiceEvent
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]map[string]chan models.InvoiceEvent)
	return ps
}

func (ps *Pubsub) Subscribe(topic string, ch chan models.InvoiceEvent) (subId string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		ps.subs[topic] = make(map[string]chan models.InvoiceEvent)
	}
	subId = random.String(32)
	ps.subs[topic][subId] = ch
	return subId
}

func (ps *Pubsub) Unsubscribe(id string, topic string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		return
	}
	if ps.subs[topic][id] == nil {
		return
	}
	close(ps.subs[topic][id])
	delete(ps.subs[topic], id)
}

// Publish hands msg to every subscriber of topic. Subscribers whose channel is
// full miss the message, publishing never blocks an invoice operation.
func (ps *Pubsub) Publish(topic string, msg models.InvoiceEvent) (dropped int) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.subs[topic] == nil {
		return 0
	}

	for _, ch := range ps.subs[topic] {
		select {
		case ch <- msg:
		default:
			dropped++
		}
	}
	return dropped
}

func (ps *Pubsub) CountSubscriptions(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subs[topic])
}
