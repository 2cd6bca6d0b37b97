package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pettycash-api/models"
	"pettycash-api/store"
)

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DashboardService computes point-in-time dashboard snapshots. Pure
// reads: no mutation, no locking, safe to call concurrently. A result
// may be stale the instant after return.
type DashboardService struct {
	store store.LedgerStore
}

func NewDashboardService(st store.LedgerStore) *DashboardService {
	return &DashboardService{store: st}
}

// ComputeSnapshot aggregates the wallet's ledger relative to asOf:
// today's and this month's APPROVED expense totals, this month's
// top-up income, day-over-day and month-over-month trends, the Mon..Sun
// series of asOf's ISO week, and the 5 newest entries.
func (s *DashboardService) ComputeSnapshot(ctx context.Context, walletID string, asOf time.Time) (*models.DashboardSnapshot, error) {
	wallet, err := s.store.WalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	loc := asOf.Location()
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)
	yesterdayStart := dayStart.AddDate(0, 0, -1)
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, loc)
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	nextMonthStart := monthStart.AddDate(0, 1, 0)
	// Monday of the ISO week containing asOf.
	weekStart := dayStart.AddDate(0, 0, -((int(asOf.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 7)

	from := earliest(prevMonthStart, weekStart, yesterdayStart)
	to := latest(nextMonthStart, weekEnd)

	entries, err := s.store.EntriesBetween(ctx, walletID, from, to)
	if err != nil {
		return nil, err
	}

	today := models.ZeroMoney()
	yesterday := models.ZeroMoney()
	monthExpense := models.ZeroMoney()
	monthIncome := models.ZeroMoney()
	prevMonthExpense := models.ZeroMoney()
	week := make([]models.Money, 7)
	for i := range week {
		week[i] = models.ZeroMoney()
	}

	for i := range entries {
		e := &entries[i]
		if e.Status != models.StatusApproved {
			continue
		}
		d := e.EffectiveDate.In(loc)

		if e.Kind == models.KindTopUp {
			if sameMonth(d, asOf) {
				monthIncome = monthIncome.Add(e.Amount)
			}
			continue
		}

		if sameDay(d, asOf) {
			today = today.Add(e.Amount)
		}
		if sameDay(d, yesterdayStart) {
			yesterday = yesterday.Add(e.Amount)
		}
		if sameMonth(d, asOf) {
			monthExpense = monthExpense.Add(e.Amount)
		}
		if sameMonth(d, prevMonthStart) {
			prevMonthExpense = prevMonthExpense.Add(e.Amount)
		}
		if !d.Before(weekStart) && d.Before(weekEnd) {
			idx := (int(d.Weekday()) + 6) % 7
			week[idx] = week[idx].Add(e.Amount)
		}
	}

	chart := make([]models.ChartPoint, 7)
	for i := range chart {
		chart[i] = models.ChartPoint{Name: weekdayNames[i], Amount: week[i].Round2()}
	}

	recent, err := s.store.RecentEntries(ctx, walletID, 5)
	if err != nil {
		return nil, err
	}

	return &models.DashboardSnapshot{
		Balance:        wallet.Balance.Round2(),
		TodayExpense:   today.Round2(),
		MonthlyExpense: monthExpense.Round2(),
		MonthlyIncome:  monthIncome.Round2(),
		TodayTrend:     trendPercent(today, yesterday),
		ExpenseTrend:   trendPercent(monthExpense, prevMonthExpense),
		RecentExpenses: recent,
		ChartData:      chart,
	}, nil
}

// trendPercent formats (cur-prev)/prev as a signed one-decimal
// percentage. A zero previous total floors the trend at zero instead
// of dividing by it.
func trendPercent(cur, prev models.Money) string {
	if !prev.IsPositive() {
		return "+0.0%"
	}
	pct := cur.Decimal().Sub(prev.Decimal()).
		Div(prev.Decimal()).
		Mul(decimal.NewFromInt(100))
	f, _ := pct.Float64()
	return fmt.Sprintf("%+.1f%%", f)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

func earliest(ts ...time.Time) time.Time {
	min := ts[0]
	for _, t := range ts[1:] {
		if t.Before(min) {
			min = t
		}
	}
	return min
}

func latest(ts ...time.Time) time.Time {
	max := ts[0]
	for _, t := range ts[1:] {
		if t.After(max) {
			max = t
		}
	}
	return max
}
