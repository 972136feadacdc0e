package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance/internal/core"
	"finance/internal/store"
)

func tx(id string, amount float64) core.Transaction {
	return core.Transaction{ID: id, Description: "d" + id, Amount: core.NewAmount(amount), Category: "c", Date: "2025-10-01"}
}

func TestMemoryStoreInsertAndListKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Insert(ctx, tx(fmt.Sprint(i), float64(i))))
	}
	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i, it := range items {
		assert.Equal(t, fmt.Sprint(i), it.ID)
	}

	assert.ErrorIs(t, s.Insert(ctx, tx("3", 1)), store.ErrDuplicateID)
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(tx("a", 1))

	items, _ := s.List(ctx)
	items[0].Description = "mutated"

	again, _ := s.List(ctx)
	assert.Equal(t, "da", again[0].Description)
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New(tx("a", 1), tx("b", -2), tx("c", 3))

	amount := core.NewAmount(-99.5)
	got, err := s.Update(ctx, "b", core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "-99.5", got.Amount.String())
	assert.Equal(t, "db", got.Description)

	_, err = s.Update(ctx, "missing", core.TransactionPatch{Amount: &amount})
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)

	require.NoError(t, s.Delete(ctx, "b"))
	require.True(t, errors.As(s.Delete(ctx, "b"), &nf))

	items, _ := s.List(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "c", items[1].ID)
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Insert(ctx, tx(fmt.Sprint(i), 1))
			_, _ = s.List(ctx)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestNewFromFile(t *testing.T) {
	s, err := NewFromFile("")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	dir := t.TempDir()
	mustWrite := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	good := mustWrite("seed.json", `[
		{"id":"1","description":"Salary","amount":3000,"category":"Salary","date":"2025-10-01"},
		{"id":"2","description":"Fuel","amount":"-80","category":"Transport","date":"2025-10-20"}
	]`)
	s, err = NewFromFile(good)
	require.NoError(t, err)
	items, _ := s.List(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, "-80", items[1].Amount.String())

	_, err = NewFromFile(mustWrite("dup.json", `[{"id":"1"},{"id":"1"}]`))
	assert.ErrorIs(t, err, store.ErrDuplicateID)

	_, err = NewFromFile(mustWrite("bad.json", `{`))
	assert.Error(t, err)

	_, err = NewFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
