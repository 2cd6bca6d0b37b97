package services

import (
	"context"
	"encoding/json"
	"time"

	"pettycash-api/models"
	"pettycash-api/store"
	"pettycash-api/utils"
)

// DashboardNotifier recomputes and pushes dashboard state after each
// committed ledger mutation. Called strictly after commit so no
// subscriber can observe a snapshot ahead of storage. Every failure in
// here is logged and swallowed: the mutation already succeeded.
type DashboardNotifier struct {
	store      store.LedgerStore
	dashboards *DashboardService
	hub        *Hub
}

func NewDashboardNotifier(st store.LedgerStore, dashboards *DashboardService, hub *Hub) *DashboardNotifier {
	return &DashboardNotifier{store: st, dashboards: dashboards, hub: hub}
}

// Publish computes a fresh snapshot plus the user's full entry list and
// delivers the bundle to every live subscriber of the user's topic.
// With no subscribers it is effectively a no-op; nothing is queued.
func (n *DashboardNotifier) Publish(ctx context.Context, userID string) {
	wallet, err := n.store.WalletByOwner(ctx, userID)
	if err != nil {
		utils.SafeError("notifier: no wallet for user %s: %v", userID, err)
		return
	}

	snapshot, err := n.dashboards.ComputeSnapshot(ctx, wallet.ID, time.Now())
	if err != nil {
		utils.SafeError("notifier: snapshot failed for wallet %s: %v", wallet.ID, err)
		return
	}

	expenses, err := n.store.EntriesByUser(ctx, userID)
	if err != nil {
		utils.SafeError("notifier: entry list failed for user %s: %v", userID, err)
		return
	}

	payload, err := json.Marshal(models.DashboardUpdate{
		Dashboard: snapshot,
		Expenses:  expenses,
	})
	if err != nil {
		utils.SafeError("notifier: marshal failed for user %s: %v", userID, err)
		return
	}

	n.hub.Broadcast(userID, payload)
}

var _ Notifier = (*DashboardNotifier)(nil)
