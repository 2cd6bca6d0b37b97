package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettycash-api/models"
)

func TestNotifierPushesSnapshotAfterCommit(t *testing.T) {
	st, _ := seedWallet(t, models.MoneyFromCents(10000))
	hub := NewHub()
	notifier := NewDashboardNotifier(st, NewDashboardService(st), hub)
	svc := NewLedgerService(st, notifier)

	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)

	_, err := svc.RecordExpense(context.Background(), "user-1", nil, "coffee", models.MoneyFromCents(450), nil)
	require.NoError(t, err)

	// Publish is synchronous on the committing path, so the message is
	// already queued.
	require.Len(t, ch, 1)

	var update models.DashboardUpdate
	require.NoError(t, json.Unmarshal(<-ch, &update))
	require.NotNil(t, update.Dashboard)
	assert.Equal(t, "95.50", update.Dashboard.Balance.String())
	assert.Equal(t, "4.50", update.Dashboard.TodayExpense.String())
	require.Len(t, update.Expenses, 1)
	assert.Equal(t, "coffee", update.Expenses[0].Note)
}

func TestNotifierOneMessagePerMutation(t *testing.T) {
	st, _ := seedWallet(t, models.MoneyFromCents(10000))
	hub := NewHub()
	notifier := NewDashboardNotifier(st, NewDashboardService(st), hub)
	svc := NewLedgerService(st, notifier)

	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)

	_, err := svc.RecordExpense(context.Background(), "user-1", nil, "one", models.MoneyFromCents(100), nil)
	require.NoError(t, err)
	_, err = svc.RecordTopUp(context.Background(), "user-1", "wallet-1", models.MoneyFromCents(200))
	require.NoError(t, err)

	assert.Len(t, ch, 2)
}

func TestNotifierSilentWithoutSubscribers(t *testing.T) {
	st, _ := seedWallet(t, models.MoneyFromCents(10000))
	hub := NewHub()
	notifier := NewDashboardNotifier(st, NewDashboardService(st), hub)
	svc := NewLedgerService(st, notifier)

	_, err := svc.RecordExpense(context.Background(), "user-1", nil, "unseen", models.MoneyFromCents(100), nil)
	require.NoError(t, err)

	// Nothing is queued for a later connection.
	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)
	assert.Len(t, ch, 0)
}

func TestNotifierIsolatesUsers(t *testing.T) {
	st, _ := seedWallet(t, models.MoneyFromCents(10000))
	hub := NewHub()
	notifier := NewDashboardNotifier(st, NewDashboardService(st), hub)
	svc := NewLedgerService(st, notifier)

	other := hub.Subscribe("user-2")
	defer hub.Unsubscribe("user-2", other)

	_, err := svc.RecordExpense(context.Background(), "user-1", nil, "mine", models.MoneyFromCents(100), nil)
	require.NoError(t, err)

	assert.Len(t, other, 0)
}

func TestNotifierSwallowsMissingWallet(t *testing.T) {
	st, _ := seedWallet(t, models.MoneyFromCents(10000))
	hub := NewHub()
	notifier := NewDashboardNotifier(st, NewDashboardService(st), hub)

	// A user with no org wallet must not panic or publish.
	notifier.Publish(context.Background(), "ghost")
	assert.Equal(t, 0, hub.Subscribers("ghost"))
}
