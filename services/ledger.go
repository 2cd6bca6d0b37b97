package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pettycash-api/events"
	"pettycash-api/models"
	"pettycash-api/store"
	"pettycash-api/utils"
)

// Notifier is invoked after a ledger mutation has durably committed.
// Implementations must never fail the mutation: delivery problems are
// theirs to swallow.
type Notifier interface {
	Publish(ctx context.Context, userID string)
}

// LedgerService is the only path that mutates wallet balances. Every
// mutation runs inside a store.Mutate atomic section holding the
// wallet's exclusive row lock; the balance check happens on the
// re-read value under that lock, so concurrent debits of one wallet
// are serialized, never merged.
type LedgerService struct {
	store       store.LedgerStore
	notifier    Notifier
	events      events.Publisher
	lockRetries int
	retryDelay  time.Duration
}

func NewLedgerService(st store.LedgerStore, notifier Notifier) *LedgerService {
	return &LedgerService{
		store:       st,
		notifier:    notifier,
		lockRetries: 3,
		retryDelay:  50 * time.Millisecond,
	}
}

// SetEventPublisher enables the committed-mutation event stream.
func (s *LedgerService) SetEventPublisher(p events.Publisher) {
	s.events = p
}

// ResolveWallet picks the wallet a mutation targets. With a category,
// the charge lands on the wallet of the category's organization, and
// the category must belong to an organization the caller owns. Without
// one, the caller's own organization wallet is used.
func (s *LedgerService) ResolveWallet(ctx context.Context, userID string, categoryID *string) (*models.Wallet, error) {
	if categoryID != nil && *categoryID != "" {
		cat, err := s.store.CategoryByID(ctx, *categoryID)
		if err != nil {
			if errors.Is(err, models.ErrCategoryNotFound) {
				return nil, &models.ValidationError{Field: "category", Reason: "invalid category"}
			}
			return nil, err
		}
		org, err := s.store.OrganizationByID(ctx, cat.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org.OwnerID != userID {
			return nil, &models.ValidationError{Field: "category", Reason: "invalid category"}
		}
		w, err := s.store.WalletByOrg(ctx, cat.OrganizationID)
		if err != nil {
			if errors.Is(err, models.ErrWalletNotFound) {
				return nil, &models.ValidationError{Reason: "no wallet found for this category"}
			}
			return nil, err
		}
		return w, nil
	}

	w, err := s.store.WalletByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrWalletNotFound) {
			return nil, &models.ValidationError{Reason: "no wallet found for this user"}
		}
		return nil, err
	}
	return w, nil
}

// RecordExpense debits the resolved wallet and appends the matching
// APPROVED EXPENSE entry in one atomic unit. The overdraft check runs
// against the balance re-read under the wallet lock.
func (s *LedgerService) RecordExpense(ctx context.Context, userID string, categoryID *string, note string, amount models.Money, effectiveDate *time.Time) (*models.LedgerEntry, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	amount = amount.Round2()

	wallet, err := s.ResolveWallet(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	effective := time.Now()
	if effectiveDate != nil {
		effective = *effectiveDate
	}

	entry := &models.LedgerEntry{
		ID:            uuid.New().String(),
		WalletID:      wallet.ID,
		UserID:        userID,
		CategoryID:    categoryID,
		Note:          note,
		Amount:        amount,
		Kind:          models.KindExpense,
		Status:        models.StatusApproved,
		EffectiveDate: effective,
		CreatedAt:     time.Now(),
	}

	var balanceAfter models.Money
	err = s.mutate(ctx, wallet.ID, func(tx store.WalletTx) error {
		w := tx.Wallet()
		if w.Balance.LessThan(amount) {
			return &models.InsufficientFundsError{Available: w.Balance, Requested: amount}
		}
		if err := tx.SetBalance(w.Balance.Sub(amount)); err != nil {
			return err
		}
		balanceAfter = w.Balance
		return tx.InsertEntry(entry)
	})
	if err != nil {
		return nil, err
	}

	utils.LogWalletAction("expense recorded", wallet.ID, userID)
	s.publish(ctx, userID)
	s.emitEvent("created", entry, balanceAfter)
	return entry, nil
}

// RecordTopUp credits the wallet. Top-ups only grow the balance, so
// there is no floor check; the row lock still serializes them against
// concurrent debits.
func (s *LedgerService) RecordTopUp(ctx context.Context, userID, walletID string, amount models.Money) (*models.LedgerEntry, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	amount = amount.Round2()

	entry := &models.LedgerEntry{
		ID:            uuid.New().String(),
		WalletID:      walletID,
		UserID:        userID,
		Note:          models.TopUpNote,
		Amount:        amount,
		Kind:          models.KindTopUp,
		Status:        models.StatusApproved,
		EffectiveDate: time.Now(),
		CreatedAt:     time.Now(),
	}

	var balanceAfter models.Money
	err := s.mutate(ctx, walletID, func(tx store.WalletTx) error {
		w := tx.Wallet()
		if err := tx.SetBalance(w.Balance.Add(amount)); err != nil {
			return err
		}
		balanceAfter = w.Balance
		return tx.InsertEntry(entry)
	})
	if err != nil {
		return nil, err
	}

	utils.LogWalletAction("top-up recorded", walletID, userID)
	s.publish(ctx, userID)
	s.emitEvent("created", entry, balanceAfter)
	return entry, nil
}

// DeleteEntry removes an entry and reverses its balance effect inside
// the same locked transaction, keeping balance == sum of committed
// entries. Deleting a TOPUP re-checks the floor: the credit cannot be
// taken back out of a wallet that already spent it.
func (s *LedgerService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.EntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return models.ErrEntryNotFound
	}

	var balanceAfter models.Money
	err = s.mutate(ctx, entry.WalletID, func(tx store.WalletTx) error {
		w := tx.Wallet()
		if entry.Kind == models.KindTopUp {
			if w.Balance.LessThan(entry.Amount) {
				return &models.InsufficientFundsError{Available: w.Balance, Requested: entry.Amount}
			}
			if err := tx.SetBalance(w.Balance.Sub(entry.Amount)); err != nil {
				return err
			}
		} else {
			if err := tx.SetBalance(w.Balance.Add(entry.Amount)); err != nil {
				return err
			}
		}
		balanceAfter = w.Balance
		return tx.DeleteEntry(entry.ID)
	})
	if err != nil {
		return err
	}

	utils.LogWalletAction("entry deleted", entry.WalletID, userID)
	s.publish(ctx, userID)
	s.emitEvent("deleted", entry, balanceAfter)
	return nil
}

// mutate wraps store.Mutate with the local retry budget for lock
// timeouts. Anything else surfaces immediately.
func (s *LedgerService) mutate(ctx context.Context, walletID string, fn func(store.WalletTx) error) error {
	var err error
	for attempt := 1; attempt <= s.lockRetries; attempt++ {
		err = s.store.Mutate(ctx, walletID, fn)
		if !errors.Is(err, models.ErrLockTimeout) {
			return err
		}
		if attempt < s.lockRetries {
			select {
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

// publish runs the post-commit hook. Notification is an explicit step
// after the transaction, never inside it, and its outcome does not
// affect the committed mutation.
func (s *LedgerService) publish(ctx context.Context, userID string) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, userID)
	}
}

// emitEvent streams the committed mutation to the broker, off the
// request path. Best-effort only.
func (s *LedgerService) emitEvent(action string, entry *models.LedgerEntry, balance models.Money) {
	if s.events == nil {
		return
	}
	evt := events.LedgerEvent{
		Action:    action,
		EntryID:   entry.ID,
		WalletID:  entry.WalletID,
		UserID:    entry.UserID,
		Balance:   balance,
		Timestamp: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, evt); err != nil {
			utils.SafeError("ledger: event publish failed for entry %s: %v", entry.ID, err)
		}
	}()
}
