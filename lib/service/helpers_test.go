package service

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/quokkahub/quokkahub.go/db/migrations"
	"github.com/quokkahub/quokkahub.go/lib/security"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"
	_ "modernc.org/sqlite"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)
	bunDB.SetMaxIdleConns(1)
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(bunDB, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)
	return bunDB
}

func newTestService(t *testing.T) (*QuokkahubService, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Unix(1700000000, 0)}
	svc := &QuokkahubService{
		Config: &Config{
			MemoMaxLength:      256,
			ProjectIDMaxLength: 64,
			InvoiceLockTimeout: 10,
		},
		DB:            newTestDB(t),
		Logger:        lecho.New(io.Discard),
		Clock:         clock,
		Transfers:     &LedgerTransferrer{},
		Locker:        NewMemoryLocker(),
		InvoicePubSub: NewPubsub(),
	}
	return svc, clock
}

type party struct {
	sk       string
	identity security.Identity
}

func newParty(t *testing.T) party {
	t.Helper()
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	return party{sk: sk, identity: security.MustParseIdentity(pk)}
}

func fund(t *testing.T, svc *QuokkahubService, p party, amount uint64) {
	t.Helper()
	_, err := svc.Deposit(context.Background(), p.identity, amount)
	require.NoError(t, err)
}

func balanceOf(t *testing.T, svc *QuokkahubService, p party) int64 {
	t.Helper()
	balance, err := svc.CurrentBalance(context.Background(), p.identity)
	require.NoError(t, err)
	return balance
}

func (p party) command(t *testing.T, content string, tags nostr.Tags) nostr.Event {
	t.Helper()
	evt := nostr.Event{
		PubKey:    p.identity.String(),
		CreatedAt: nostr.Now(),
		Kind:      23195,
		Tags:      tags,
		Content:   content,
	}
	require.NoError(t, evt.Sign(p.sk))
	return evt
}
