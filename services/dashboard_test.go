package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettycash-api/models"
	"pettycash-api/store"
)

// Wednesday, 2024-06-12. The surrounding ISO week runs Mon 10th
// through Sun 16th.
var asOf = time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

func addEntry(t *testing.T, st *store.MemoryStore, id string, kind models.EntryKind, status models.EntryStatus, cents int64, effective time.Time) {
	t.Helper()
	err := st.Mutate(context.Background(), "wallet-1", func(tx store.WalletTx) error {
		return tx.InsertEntry(&models.LedgerEntry{
			ID:            id,
			WalletID:      "wallet-1",
			UserID:        "user-1",
			Note:          "seed " + id,
			Amount:        models.MoneyFromCents(cents),
			Kind:          kind,
			Status:        status,
			EffectiveDate: effective,
			CreatedAt:     effective,
		})
	})
	require.NoError(t, err)
}

func dashboardFixture(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	st.PutOrganization(models.Organization{ID: "org-1", Name: "Acme's Org", OwnerID: "user-1"})
	st.PutWallet(models.Wallet{ID: "wallet-1", OrganizationID: "org-1", Balance: models.MoneyFromCents(25000)})
	return st
}

func TestSnapshotAggregates(t *testing.T) {
	st := dashboardFixture(t)

	// Today: 30.00 across two entries. Yesterday: 20.00.
	addEntry(t, st, "e-today-1", models.KindExpense, models.StatusApproved, 1000, asOf.Add(-2*time.Hour))
	addEntry(t, st, "e-today-2", models.KindExpense, models.StatusApproved, 2000, asOf.Add(-1*time.Hour))
	addEntry(t, st, "e-yday", models.KindExpense, models.StatusApproved, 2000, asOf.AddDate(0, 0, -1))

	// Earlier this month, outside the week.
	addEntry(t, st, "e-month", models.KindExpense, models.StatusApproved, 5000, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC))

	// Previous month: 40.00.
	addEntry(t, st, "e-prev", models.KindExpense, models.StatusApproved, 4000, time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC))

	// Top-ups count as income, never as expense.
	addEntry(t, st, "e-topup", models.KindTopUp, models.StatusApproved, 15000, asOf.Add(-3*time.Hour))

	svc := NewDashboardService(st)
	snap, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, "250.00", snap.Balance.String())
	assert.Equal(t, "30.00", snap.TodayExpense.String())
	assert.Equal(t, "100.00", snap.MonthlyExpense.String())
	assert.Equal(t, "150.00", snap.MonthlyIncome.String())

	// (30-20)/20 and (100-40)/40.
	assert.Equal(t, "+50.0%", snap.TodayTrend)
	assert.Equal(t, "+150.0%", snap.ExpenseTrend)
}

func TestSnapshotWeeklyChart(t *testing.T) {
	st := dashboardFixture(t)

	monday := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	addEntry(t, st, "e-mon", models.KindExpense, models.StatusApproved, 1100, monday)
	addEntry(t, st, "e-wed", models.KindExpense, models.StatusApproved, 2200, asOf)
	addEntry(t, st, "e-sun", models.KindExpense, models.StatusApproved, 3300, time.Date(2024, 6, 16, 23, 0, 0, 0, time.UTC))
	// Previous Sunday sits outside the week.
	addEntry(t, st, "e-out", models.KindExpense, models.StatusApproved, 9900, time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC))

	svc := NewDashboardService(st)
	snap, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	require.Len(t, snap.ChartData, 7)
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, p := range snap.ChartData {
		assert.Equal(t, names[i], p.Name)
	}
	assert.Equal(t, "11.00", snap.ChartData[0].Amount.String())
	assert.Equal(t, "0.00", snap.ChartData[1].Amount.String())
	assert.Equal(t, "22.00", snap.ChartData[2].Amount.String())
	assert.Equal(t, "33.00", snap.ChartData[6].Amount.String())
}

func TestSnapshotSkipsUnapprovedEntries(t *testing.T) {
	st := dashboardFixture(t)

	addEntry(t, st, "e-ok", models.KindExpense, models.StatusApproved, 1000, asOf.Add(-1*time.Hour))
	addEntry(t, st, "e-pending", models.KindExpense, models.StatusPending, 5000, asOf.Add(-1*time.Hour))
	addEntry(t, st, "e-rejected", models.KindExpense, models.StatusRejected, 7000, asOf.Add(-1*time.Hour))

	svc := NewDashboardService(st)
	snap, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, "10.00", snap.TodayExpense.String())
	assert.Equal(t, "10.00", snap.MonthlyExpense.String())
}

func TestSnapshotTrendFloorsOnZeroPrevious(t *testing.T) {
	st := dashboardFixture(t)
	addEntry(t, st, "e-today", models.KindExpense, models.StatusApproved, 1000, asOf.Add(-1*time.Hour))

	svc := NewDashboardService(st)
	snap, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	// No yesterday and no previous month baseline.
	assert.Equal(t, "+0.0%", snap.TodayTrend)
	assert.Equal(t, "+0.0%", snap.ExpenseTrend)
}

func TestSnapshotNegativeTrend(t *testing.T) {
	st := dashboardFixture(t)
	addEntry(t, st, "e-today", models.KindExpense, models.StatusApproved, 1000, asOf.Add(-1*time.Hour))
	addEntry(t, st, "e-yday", models.KindExpense, models.StatusApproved, 4000, asOf.AddDate(0, 0, -1))

	svc := NewDashboardService(st)
	snap, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, "-75.0%", snap.TodayTrend)
}

func TestSnapshotRecentEntriesCap(t *testing.T) {
	st := dashboardFixture(t)
	for i := 0; i < 8; i++ {
		addEntry(t, st, "e-"+string(rune('a'+i)), models.KindExpense, models.StatusApproved, 100, asOf.Add(time.Duration(-i)*time.Minute))
	}

	svc := NewDashboardService(st)
	snap, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	require.Len(t, snap.RecentExpenses, 5)
	// Newest first.
	assert.Equal(t, "e-a", snap.RecentExpenses[0].ID)
}

func TestSnapshotIsReadOnly(t *testing.T) {
	st := dashboardFixture(t)
	addEntry(t, st, "e-1", models.KindExpense, models.StatusApproved, 1000, asOf.Add(-1*time.Hour))

	svc := NewDashboardService(st)
	first, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)
	second, err := svc.ComputeSnapshot(context.Background(), "wallet-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, first.TodayExpense.String(), second.TodayExpense.String())
	assert.Equal(t, first.Balance.String(), second.Balance.String())
	assert.Equal(t, first.TodayTrend, second.TodayTrend)
}

func TestSnapshotUnknownWallet(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewDashboardService(st)
	_, err := svc.ComputeSnapshot(context.Background(), "nope", asOf)
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
}
