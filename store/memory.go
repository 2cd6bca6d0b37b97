package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pettycash-api/models"
)

// MemoryStore is an in-memory LedgerStore with the same per-wallet
// exclusive locking semantics as the Postgres store. Mutations are
// staged and applied atomically on commit.
type MemoryStore struct {
	mu       sync.RWMutex
	wallets  map[string]models.Wallet
	orgs     map[string]models.Organization
	cats     map[string]models.Category
	users    map[string]models.User
	entries  []models.LedgerEntry
	locks    map[string]chan struct{}
	lockWait time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets:  make(map[string]models.Wallet),
		orgs:     make(map[string]models.Organization),
		cats:     make(map[string]models.Category),
		users:    make(map[string]models.User),
		locks:    make(map[string]chan struct{}),
		lockWait: 3 * time.Second,
	}
}

// SetLockWait overrides the wallet lock wait budget.
func (s *MemoryStore) SetLockWait(d time.Duration) { s.lockWait = d }

// Seed helpers used by the test suites and local setups.

func (s *MemoryStore) PutOrganization(o models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

func (s *MemoryStore) PutWallet(w models.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
}

func (s *MemoryStore) PutCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[c.ID] = c
}

func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) walletLock(walletID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[walletID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[walletID] = l
	}
	return l
}

func (s *MemoryStore) Mutate(ctx context.Context, walletID string, fn func(WalletTx) error) error {
	lock := s.walletLock(walletID)
	select {
	case lock <- struct{}{}:
	case <-time.After(s.lockWait):
		return models.ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock }()

	s.mu.RLock()
	w, ok := s.wallets[walletID]
	s.mu.RUnlock()
	if !ok {
		return models.ErrWalletNotFound
	}

	tx := &memWalletTx{store: s, wallet: &w}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit the staged changes as one unit.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[walletID] = *tx.wallet
	for _, del := range tx.deleted {
		for i := range s.entries {
			if s.entries[i].ID == del {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				break
			}
		}
	}
	s.entries = append(s.entries, tx.inserted...)
	return nil
}

type memWalletTx struct {
	store    *MemoryStore
	wallet   *models.Wallet
	inserted []models.LedgerEntry
	deleted  []string
}

func (t *memWalletTx) Wallet() *models.Wallet { return t.wallet }

func (t *memWalletTx) SetBalance(balance models.Money) error {
	t.wallet.Balance = balance
	t.wallet.LastUpdated = time.Now()
	return nil
}

func (t *memWalletTx) InsertEntry(entry *models.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	t.inserted = append(t.inserted, *entry)
	return nil
}

func (t *memWalletTx) DeleteEntry(entryID string) error {
	for _, del := range t.deleted {
		if del == entryID {
			return models.ErrEntryNotFound
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for i := range t.store.entries {
		if t.store.entries[i].ID == entryID && t.store.entries[i].WalletID == t.wallet.ID {
			t.deleted = append(t.deleted, entryID)
			return nil
		}
	}
	return models.ErrEntryNotFound
}

func (s *MemoryStore) WalletByID(ctx context.Context, id string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, models.ErrWalletNotFound
	}
	return &w, nil
}

func (s *MemoryStore) WalletByOrg(ctx context.Context, orgID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.wallets {
		if w.OrganizationID == orgID {
			copied := w
			return &copied, nil
		}
	}
	return nil, models.ErrWalletNotFound
}

func (s *MemoryStore) WalletByOwner(ctx context.Context, ownerID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orgs {
		if o.OwnerID == ownerID {
			for _, w := range s.wallets {
				if w.OrganizationID == o.ID {
					copied := w
					return &copied, nil
				}
			}
		}
	}
	return nil, models.ErrWalletNotFound
}

func (s *MemoryStore) OrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, models.ErrOrgNotFound
	}
	return &o, nil
}

func (s *MemoryStore) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cats[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *MemoryStore) EntryByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			copied := s.entries[i]
			return &copied, nil
		}
	}
	return nil, models.ErrEntryNotFound
}

func (s *MemoryStore) RecentEntries(ctx context.Context, walletID string, n int) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LedgerEntry
	for _, e := range s.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) EntriesBetween(ctx context.Context, walletID string, from, to time.Time) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LedgerEntry
	for _, e := range s.entries {
		if e.WalletID != walletID {
			continue
		}
		if e.EffectiveDate.Before(from) || !e.EffectiveDate.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out, nil
}

func (s *MemoryStore) EntriesByUser(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.LedgerEntry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ LedgerStore = (*MemoryStore)(nil)
