package models

// Event : Event Model
// Signed commands are stored once; the unique event id makes a replayed command fail.
type Event struct {
	ID         int64  `bun:",pk,autoincrement"`
	EventID    string `bun:",notnull,unique"`
	FromPubkey string `bun:",notnull"`
	Kind       int64  `bun:",notnull"`
	Content    string `bun:",notnull"`
	CreatedAt  int64  `bun:",notnull"`
}
