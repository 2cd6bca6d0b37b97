// Package store holds the durable ledger state: wallets, their ordered
// entry sequences, and the lookups the service layer needs around them.
package store

import (
	"context"
	"time"

	"pettycash-api/models"
)

// WalletTx is the view of one open atomic mutation. The wallet row is
// exclusively locked for the lifetime of the callback; everything done
// through WalletTx commits or rolls back as a unit.
type WalletTx interface {
	// Wallet returns the wallet as re-read under the lock.
	Wallet() *models.Wallet
	SetBalance(balance models.Money) error
	InsertEntry(entry *models.LedgerEntry) error
	DeleteEntry(entryID string) error
}

// LedgerStore is the storage contract of the ledger core. Two
// implementations exist: Postgres (production) and an in-memory store
// with the same locking semantics (tests).
type LedgerStore interface {
	// Mutate runs fn inside an atomic transaction holding an exclusive
	// lock on the wallet row. A nil return from fn commits; any error
	// rolls everything back and is returned unchanged. Lock
	// acquisition is bounded: models.ErrLockTimeout is returned when
	// the wallet stays contended past the wait budget.
	Mutate(ctx context.Context, walletID string, fn func(WalletTx) error) error

	WalletByID(ctx context.Context, id string) (*models.Wallet, error)
	WalletByOrg(ctx context.Context, orgID string) (*models.Wallet, error)
	// WalletByOwner resolves the wallet of the organization owned by
	// the given user.
	WalletByOwner(ctx context.Context, ownerID string) (*models.Wallet, error)

	OrganizationByID(ctx context.Context, id string) (*models.Organization, error)
	CategoryByID(ctx context.Context, id string) (*models.Category, error)

	EntryByID(ctx context.Context, id string) (*models.LedgerEntry, error)
	// RecentEntries returns the n newest entries by creation time,
	// newest first, regardless of status.
	RecentEntries(ctx context.Context, walletID string, n int) ([]models.LedgerEntry, error)
	// EntriesBetween returns entries whose effective date falls in
	// [from, to), oldest first. Status filtering is the caller's job.
	EntriesBetween(ctx context.Context, walletID string, from, to time.Time) ([]models.LedgerEntry, error)
	EntriesByUser(ctx context.Context, userID string) ([]models.LedgerEntry, error)
}
