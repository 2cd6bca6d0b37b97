package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusApproved))
	assert.True(t, StatusPending.CanTransition(StatusRejected))

	assert.False(t, StatusApproved.CanTransition(StatusRejected))
	assert.False(t, StatusApproved.CanTransition(StatusPending))
	assert.False(t, StatusRejected.CanTransition(StatusApproved))
	assert.False(t, StatusPending.CanTransition(StatusPending))
}

func TestEntrySigned(t *testing.T) {
	topup := &LedgerEntry{Kind: KindTopUp, Amount: MoneyFromCents(500)}
	assert.True(t, topup.Signed().Equal(MoneyFromCents(500)))

	expense := &LedgerEntry{Kind: KindExpense, Amount: MoneyFromCents(500)}
	assert.True(t, expense.Signed().Equal(MoneyFromCents(-500)))
}
