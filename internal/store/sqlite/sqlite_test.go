package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance/internal/core"
	"finance/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "finance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.Insert(ctx, core.Transaction{ID: "b", Description: "Salary", Amount: core.NewAmount(3000), Category: "Salary", Date: "2025-10-01"}))
	require.NoError(t, s.Insert(ctx, core.Transaction{ID: "a", Description: "Fuel", Amount: core.NewAmount(-80.25), Category: "Transport", Date: "2025-10-20"}))
	assert.ErrorIs(t, s.Insert(ctx, core.Transaction{ID: "a"}), store.ErrDuplicateID)

	items, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID, "insertion order, not id order")
	assert.Equal(t, "-80.25", items[1].Amount.String())

	cat := "Car"
	got, err := s.Update(ctx, "a", core.TransactionPatch{Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, "Car", got.Category)
	assert.Equal(t, "Fuel", got.Description)
	assert.Equal(t, "-80.25", got.Amount.String())

	_, err = s.Update(ctx, "zzz", core.TransactionPatch{Category: &cat})
	var nf *core.NotFoundError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, s.Delete(ctx, "b"))
	assert.True(t, errors.As(s.Delete(ctx, "b"), &nf))

	items, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Car", items[0].Category)
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, core.Transaction{ID: "1", Description: "x", Amount: core.NewAmount(1), Category: "c", Date: "2025-01-01"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSQLiteStoreDeleteNotFoundWithMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	mock.ExpectExec("DELETE FROM transactions WHERE id = \\?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.Delete(context.Background(), "missing")
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreListRejectsCorruptAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "description", "amount", "category", "date"}).
		AddRow("1", "ok", "12.5", "c", "2025-01-01").
		AddRow("2", "bad", "twelve", "c", "2025-01-01")
	mock.ExpectQuery("SELECT id, description, amount, category, date FROM transactions ORDER BY seq").
		WillReturnRows(rows)

	_, err = New(db).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt amount")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreInsertMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO transactions").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: transactions.id (2067)"))

	err = New(db).Insert(context.Background(), core.Transaction{ID: "dup"})
	assert.ErrorIs(t, err, store.ErrDuplicateID)
	require.NoError(t, mock.ExpectationsWereMet())
}
