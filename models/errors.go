package models

import (
	"errors"
	"fmt"
)

var (
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrEntryNotFound    = errors.New("ledger entry not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOrgNotFound      = errors.New("organization not found")

	// ErrLockTimeout means the wallet row lock could not be acquired
	// within the bounded wait. Safe to retry.
	ErrLockTimeout = errors.New("timed out waiting for wallet lock")
)

// ValidationError is a user-correctable input failure. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// InsufficientFundsError is an expected business outcome of a debit
// against a wallet that cannot cover it. The wallet is left untouched.
type InsufficientFundsError struct {
	Available Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: available %s, requested %s",
		e.Available.String(), e.Requested.String())
}

// StorageError wraps a durability or connectivity failure inside the
// atomic section. The enclosing transaction is fully rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
