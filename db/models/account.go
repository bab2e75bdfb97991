package models

// Account : Account Model
// Balance is the spendable amount of the identity owning the account.
type Account struct {
	ID       int64  `bun:",pk,autoincrement"`
	Identity string `bun:",notnull,unique"`
	Type     string `bun:",notnull"`
	Balance  int64  `bun:",notnull,default:0"`
}
