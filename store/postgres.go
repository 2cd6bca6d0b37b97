package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pettycash-api/models"
)

// pq error 55P03: lock_not_available, raised when lock_timeout expires
// while waiting on the wallet row.
const pqLockNotAvailable = "55P03"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `
	e.id, e.wallet_id, e.user_id, COALESCE(u.name, ''),
	e.category_id, COALESCE(c.name, ''),
	e.note, e.amount, e.kind, e.status, e.effective_date, e.created_at`

const entryJoins = `
	FROM ledger_entries e
	LEFT JOIN users u ON e.user_id = u.id
	LEFT JOIN categories c ON e.category_id = c.id`

func (s *PostgresStore) Mutate(ctx context.Context, walletID string, fn func(WalletTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StorageError{Op: "begin", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	// Bound the wait on the row lock; concurrent mutators of the same
	// wallet queue here, other wallets are unaffected.
	if _, err := tx.ExecContext(ctx, `SET LOCAL lock_timeout = '3s'`); err != nil {
		return &models.StorageError{Op: "set lock_timeout", Err: err}
	}

	var w models.Wallet
	err = tx.QueryRowContext(ctx, `
		SELECT id, organization_id, balance, last_updated, created_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`, walletID).Scan(&w.ID, &w.OrganizationID, &w.Balance, &w.LastUpdated, &w.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrWalletNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqLockNotAvailable {
			return models.ErrLockTimeout
		}
		return &models.StorageError{Op: "lock wallet", Err: err}
	}

	if err := fn(&pgWalletTx{ctx: ctx, tx: tx, wallet: &w}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &models.StorageError{Op: "commit", Err: err}
	}
	committed = true
	return nil
}

type pgWalletTx struct {
	ctx    context.Context
	tx     *sql.Tx
	wallet *models.Wallet
}

func (t *pgWalletTx) Wallet() *models.Wallet { return t.wallet }

func (t *pgWalletTx) SetBalance(balance models.Money) error {
	_, err := t.tx.ExecContext(t.ctx, `
		UPDATE wallets
		SET balance = $1, last_updated = NOW()
		WHERE id = $2
	`, balance, t.wallet.ID)
	if err != nil {
		return &models.StorageError{Op: "update balance", Err: err}
	}
	t.wallet.Balance = balance
	t.wallet.LastUpdated = time.Now()
	return nil
}

func (t *pgWalletTx) InsertEntry(entry *models.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO ledger_entries (id, wallet_id, user_id, category_id, note, amount, kind, status, effective_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.WalletID, entry.UserID, entry.CategoryID, entry.Note,
		entry.Amount, entry.Kind, entry.Status, entry.EffectiveDate, entry.CreatedAt)
	if err != nil {
		return &models.StorageError{Op: "insert entry", Err: err}
	}
	return nil
}

func (t *pgWalletTx) DeleteEntry(entryID string) error {
	res, err := t.tx.ExecContext(t.ctx, `
		DELETE FROM ledger_entries
		WHERE id = $1 AND wallet_id = $2
	`, entryID, t.wallet.ID)
	if err != nil {
		return &models.StorageError{Op: "delete entry", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrEntryNotFound
	}
	return nil
}

func (s *PostgresStore) WalletByID(ctx context.Context, id string) (*models.Wallet, error) {
	return s.walletWhere(ctx, `WHERE w.id = $1`, id)
}

func (s *PostgresStore) WalletByOrg(ctx context.Context, orgID string) (*models.Wallet, error) {
	return s.walletWhere(ctx, `WHERE w.organization_id = $1`, orgID)
}

func (s *PostgresStore) WalletByOwner(ctx context.Context, ownerID string) (*models.Wallet, error) {
	return s.walletWhere(ctx, `
		INNER JOIN organizations o ON w.organization_id = o.id
		WHERE o.owner_id = $1`, ownerID)
}

func (s *PostgresStore) walletWhere(ctx context.Context, clause string, arg string) (*models.Wallet, error) {
	var w models.Wallet
	err := s.db.QueryRowContext(ctx, `
		SELECT w.id, w.organization_id, w.balance, w.last_updated, w.created_at
		FROM wallets w
		`+clause, arg).Scan(&w.ID, &w.OrganizationID, &w.Balance, &w.LastUpdated, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrWalletNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "query wallet", Err: err}
	}
	return &w, nil
}

func (s *PostgresStore) OrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.OwnerID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrgNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "query organization", Err: err}
	}
	return &o, nil
}

func (s *PostgresStore) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.OrganizationID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "query category", Err: err}
	}
	return &c, nil
}

func (s *PostgresStore) EntryByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+entryJoins+` WHERE e.id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEntryNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "query entry", Err: err}
	}
	return e, nil
}

func (s *PostgresStore) RecentEntries(ctx context.Context, walletID string, n int) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+entryJoins+`
		WHERE e.wallet_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2
	`, walletID, n)
	if err != nil {
		return nil, &models.StorageError{Op: "query recent entries", Err: err}
	}
	return collectEntries(rows)
}

func (s *PostgresStore) EntriesBetween(ctx context.Context, walletID string, from, to time.Time) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+entryJoins+`
		WHERE e.wallet_id = $1 AND e.effective_date >= $2 AND e.effective_date < $3
		ORDER BY e.effective_date ASC
	`, walletID, from, to)
	if err != nil {
		return nil, &models.StorageError{Op: "query entries by range", Err: err}
	}
	return collectEntries(rows)
}

func (s *PostgresStore) EntriesByUser(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+entryJoins+`
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
	`, userID)
	if err != nil {
		return nil, &models.StorageError{Op: "query entries by user", Err: err}
	}
	return collectEntries(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	var categoryID sql.NullString
	err := row.Scan(&e.ID, &e.WalletID, &e.UserID, &e.UserName,
		&categoryID, &e.CategoryName,
		&e.Note, &e.Amount, &e.Kind, &e.Status, &e.EffectiveDate, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.String
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]models.LedgerEntry, error) {
	defer rows.Close()
	entries := []models.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, &models.StorageError{Op: "scan entry", Err: err}
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "iterate entries", Err: err}
	}
	return entries, nil
}

var _ LedgerStore = (*PostgresStore)(nil)
