package models

import (
	"time"
)

type EntryKind string

const (
	KindExpense EntryKind = "EXPENSE"
	KindTopUp   EntryKind = "TOPUP"
)

type EntryStatus string

const (
	StatusPending  EntryStatus = "PENDING"
	StatusApproved EntryStatus = "APPROVED"
	StatusRejected EntryStatus = "REJECTED"
)

// CanTransition reports whether a status change is allowed. Only
// PENDING entries may move, and only to APPROVED or REJECTED. The
// system currently creates APPROVED entries directly, so these
// transitions exist as extension points without any workflow driving
// them.
func (s EntryStatus) CanTransition(to EntryStatus) bool {
	return s == StatusPending && (to == StatusApproved || to == StatusRejected)
}

// TopUpNote marks credit entries in the ledger.
const TopUpNote = "Wallet Top-up"

// LedgerEntry is an immutable record of one balance-affecting event.
// Amount is strictly positive; kind encodes direction. Once committed
// with status APPROVED, amount and kind never change.
type LedgerEntry struct {
	ID            string      `json:"id"`
	WalletID      string      `json:"wallet_id"`
	UserID        string      `json:"user_id"`
	UserName      string      `json:"user_name,omitempty"`
	CategoryID    *string     `json:"category_id"`
	CategoryName  string      `json:"category_name,omitempty"`
	Note          string      `json:"note"`
	Amount        Money       `json:"amount"`
	Kind          EntryKind   `json:"kind"`
	Status        EntryStatus `json:"status"`
	EffectiveDate time.Time   `json:"effective_date"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Signed returns the entry's contribution to the wallet balance.
func (e *LedgerEntry) Signed() Money {
	if e.Kind == KindTopUp {
		return e.Amount
	}
	return ZeroMoney().Sub(e.Amount)
}

type CreateExpenseRequest struct {
	CategoryID    *string    `json:"category_id"`
	Note          string     `json:"note"`
	Amount        Money      `json:"amount" binding:"required"`
	EffectiveDate *time.Time `json:"effective_date"`
}
