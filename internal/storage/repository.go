package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendlens/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	version uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, version: version}, nil
}

// SchemaVersion is the migration version the database was brought up to.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.version
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const transactionColumns = `id, description, amount, category, kind, date, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		kind string
		date string
	)
	if err := row.Scan(&t.ID, &t.Description, &t.Amount, &t.Category, &kind, &date, &t.Notes); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: stored date %q: %w", t.ID, date, err)
	}
	t.Kind = core.Kind(kind)
	t.Date = d
	return t, nil
}

// ListTransactions implements sheets.TransactionStore.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// SaveTransaction inserts a new record or updates an existing one in place.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount, category, kind, date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount      = excluded.amount,
			category    = excluded.category,
			kind        = excluded.kind,
			date        = excluded.date,
			notes       = excluded.notes,
			updated_at  = CURRENT_TIMESTAMP`,
		t.ID, t.Description, t.Amount.String(), t.Category, string(t.Kind), t.Date.String(), t.Notes)
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"category", t.Category,
		"kind", t.Kind)
	return nil
}

// DeleteTransactions removes ids in one database transaction.
func (r *SQLiteRepository) DeleteTransactions(ctx context.Context, ids ...string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM transactions WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	deleted := 0
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("delete transaction %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Transactions deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

const budgetColumns = `id, category, allocated, spent, period`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b      core.Budget
		period string
	)
	if err := row.Scan(&b.ID, &b.Category, &b.Allocated, &b.Spent, &period); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.Period(period)
	return b, nil
}

// ListBudgets implements sheets.BudgetStore.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	return r.SaveBudgets(ctx, []core.Budget{b})
}

// SaveBudgets upserts every budget or none.
func (r *SQLiteRepository) SaveBudgets(ctx context.Context, bs []core.Budget) error {
	for _, b := range bs {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("budget %s: %w", b.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save budgets: %w", err)
	}
	defer tx.Rollback()

	for _, b := range bs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (id, category, allocated, spent, period)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				category   = excluded.category,
				allocated  = excluded.allocated,
				spent      = excluded.spent,
				period     = excluded.period,
				updated_at = CURRENT_TIMESTAMP`,
			b.ID, b.Category, b.Allocated.String(), b.Spent.String(), string(b.Period))
		if err != nil {
			return fmt.Errorf("save budget %s: %w", b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budgets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListDismissed implements sheets.DismissalStore.
func (r *SQLiteRepository) ListDismissed(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT alert_id FROM dismissed_alerts ORDER BY dismissed_at, alert_id`)
	if err != nil {
		return nil, fmt.Errorf("list dismissed alerts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dismissed alert: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Dismiss(ctx context.Context, alertID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO dismissed_alerts (alert_id) VALUES (?)`, alertID)
	if err != nil {
		return fmt.Errorf("dismiss alert: %w", err)
	}
	slog.InfoContext(ctx, "Alert dismissed", "alert_id", alertID)
	return nil
}
