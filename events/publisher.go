// Package events streams committed ledger mutations to an external
// broker for downstream consumers (reporting, audit). The stream is
// best-effort and strictly after-commit: the ledger never waits on it.
package events

import (
	"context"
	"time"

	"pettycash-api/models"
)

// LedgerEvent describes one committed mutation.
type LedgerEvent struct {
	Action    string       `json:"action"` // "created" or "deleted"
	EntryID   string       `json:"entry_id"`
	WalletID  string       `json:"wallet_id"`
	UserID    string       `json:"user_id"`
	Balance   models.Money `json:"balance"`
	Timestamp time.Time    `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event LedgerEvent) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }
