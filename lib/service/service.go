package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quokkahub/quokkahub.go/rabbitmq"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

type QuokkahubService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	Clock          Clock
	Transfers      ValueTransferrer
	Locker         InvoiceLocker
	InvoicePubSub  *Pubsub
	RabbitMQClient rabbitmq.Client

	defaultsOnce sync.Once
}

// Clock is the trusted time source for issued_at and confirmed_at.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (svc *QuokkahubService) setDefaults() {
	svc.defaultsOnce.Do(func() {
		if svc.Clock == nil {
			svc.Clock = systemClock{}
		}
		if svc.Transfers == nil {
			svc.Transfers = &LedgerTransferrer{}
		}
		if svc.Locker == nil {
			svc.Locker = NewMemoryLocker()
		}
		if svc.InvoicePubSub == nil {
			svc.InvoicePubSub = NewPubsub()
		}
	})
}

func (svc *QuokkahubService) now() time.Time {
	svc.setDefaults()
	return svc.Clock.Now()
}

// withInvoiceLock runs fn while holding the exclusive lock of one invoice address.
// Operations on different addresses never wait for each other.
func (svc *QuokkahubService) withInvoiceLock(ctx context.Context, address string, fn func() error) error {
	svc.setDefaults()
	lockCtx := ctx
	if svc.Config != nil && svc.Config.InvoiceLockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, svc.Config.InvoiceLockTimeoutDuration())
		defer cancel()
	}
	unlock, err := svc.Locker.Lock(lockCtx, address)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvoiceLocked, address, err)
	}
	defer unlock()
	return fn()
}

// Now reads the service clock.
func (svc *QuokkahubService) Now() time.Time {
	return svc.now()
}
