// Package sqlite stores transactions in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/store"
)

var _ store.Store = (*Store)(nil)

const (
	listQuery   = `SELECT id, description, amount, category, date FROM transactions ORDER BY seq`
	getQuery    = `SELECT id, description, amount, category, date FROM transactions WHERE id = ?`
	insertQuery = `INSERT INTO transactions (id, description, amount, category, date) VALUES (?, ?, ?, ?, ?)`
	updateQuery = `UPDATE transactions SET description = ?, amount = ?, category = ?, date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	deleteQuery = `DELETE FROM transactions WHERE id = ?`
)

// Store is a SQLite-backed transaction store. Insertion order is kept by an
// autoincrement sequence column.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, migrates it and returns a store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return New(db), nil
}

// New wraps an already migrated database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// List returns all transactions ordered by insertion.
func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Insert appends t.
func (s *Store) Insert(ctx context.Context, t core.Transaction) error {
	_, err := s.db.ExecContext(ctx, insertQuery, t.ID, t.Description, t.Amount.String(), t.Category, t.Date)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateID
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldTransactionID, t.ID,
		applog.FieldAmount, t.Amount.String())
	return nil
}

// Update reads, patches and writes the row inside one database transaction.
func (s *Store) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	t, err := scanTransaction(tx.QueryRowContext(ctx, getQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.Transaction{}, err
	}

	patch.Apply(&t)
	if _, err := tx.ExecContext(ctx, updateQuery, t.Description, t.Amount.String(), t.Category, t.Date, id); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}
	return t, nil
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return &core.NotFoundError{ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		amount string
	)
	if err := row.Scan(&t.ID, &t.Description, &amount, &t.Category, &t.Date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	a, err := core.ParseAmount(amount)
	if err != nil {
		return t, fmt.Errorf("transaction %s has corrupt amount %q: %w", t.ID, amount, err)
	}
	t.Amount = a
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
