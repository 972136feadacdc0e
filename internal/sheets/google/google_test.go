package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finance/internal/core"
)

type sheetCall struct {
	method     string
	path       string
	inputValue string
	values     [][]any
}

// fakeSheets serves the subset of the Sheets values API the client uses,
// backed by column A.
type fakeSheets struct {
	mu     sync.Mutex
	column [][]any
	calls  []sheetCall
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := sheetCall{method: r.Method, path: r.URL.Path, inputValue: r.URL.Query().Get("valueInputOption")}
	if r.Body != nil {
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err == nil {
			call.values = vr.Values
		}
	}
	f.calls = append(f.calls, call)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Transactions!A:A", "values": f.column})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func newTestClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	require.NoError(t, err)
	return NewWithService(svc, "sheet-id", "Transactions")
}

func sampleTransaction(t *testing.T) core.Transaction {
	amount, err := core.ParseAmount("-42.5")
	require.NoError(t, err)
	return core.Transaction{ID: "b", Description: "Groceries", Amount: amount, Category: "Food", Date: "2025-10-03"}
}

func TestUpsertAppendsHeaderToEmptySheet(t *testing.T) {
	f := &fakeSheets{}
	c := newTestClient(t, f)

	require.NoError(t, c.UpsertTransaction(context.Background(), sampleTransaction(t)))

	require.Len(t, f.calls, 2)
	assert.Equal(t, http.MethodGet, f.calls[0].method)
	assert.Equal(t, http.MethodPost, f.calls[1].method)
	assert.True(t, strings.HasSuffix(f.calls[1].path, ":append"), f.calls[1].path)
	require.Len(t, f.calls[1].values, 2)
	assert.Equal(t, "id", f.calls[1].values[0][0])
	assert.Equal(t, "USER_ENTERED", f.calls[1].inputValue)
	assert.Equal(t, []any{"'b", "'2025-10-03", "'Groceries", "-42.5", "'Food"}, f.calls[1].values[1])
}

func TestRowValuesKeepDecimalPrecision(t *testing.T) {
	amount, err := core.ParseAmount("12345678901234567.89")
	require.NoError(t, err)

	row := rowValues(core.Transaction{ID: "p", Description: "=SUM(A1)", Amount: amount, Category: "c", Date: "2025-10-03"})
	assert.Equal(t, "12345678901234567.89", row[3])
	assert.Equal(t, "'=SUM(A1)", row[2])
}

func TestUpsertUpdatesExistingRow(t *testing.T) {
	f := &fakeSheets{column: [][]any{{"id"}, {"a"}, {"b"}}}
	c := newTestClient(t, f)

	require.NoError(t, c.UpsertTransaction(context.Background(), sampleTransaction(t)))

	require.Len(t, f.calls, 2)
	assert.Equal(t, http.MethodPut, f.calls[1].method)
	assert.True(t, strings.HasSuffix(f.calls[1].path, "Transactions!A3:E3"), f.calls[1].path)
	require.Len(t, f.calls[1].values, 1)
}

func TestUpsertAppendsNewRowWithoutHeader(t *testing.T) {
	f := &fakeSheets{column: [][]any{{"id"}, {"a"}}}
	c := newTestClient(t, f)

	require.NoError(t, c.UpsertTransaction(context.Background(), sampleTransaction(t)))

	require.Len(t, f.calls, 2)
	assert.True(t, strings.HasSuffix(f.calls[1].path, ":append"))
	assert.Len(t, f.calls[1].values, 1)
}

func TestDeleteClearsRow(t *testing.T) {
	f := &fakeSheets{column: [][]any{{"id"}, {"a"}, {"b"}}}
	c := newTestClient(t, f)

	require.NoError(t, c.DeleteTransaction(context.Background(), "a"))

	require.Len(t, f.calls, 2)
	assert.Equal(t, http.MethodPost, f.calls[1].method)
	assert.True(t, strings.HasSuffix(f.calls[1].path, "Transactions!A2:E2:clear"), f.calls[1].path)
}

func TestDeleteMissingRowIsNoop(t *testing.T) {
	f := &fakeSheets{column: [][]any{{"id"}, {"a"}}}
	c := newTestClient(t, f)

	require.NoError(t, c.DeleteTransaction(context.Background(), "zzz"))
	assert.Len(t, f.calls, 1)
}

func TestNilServiceFails(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: "Transactions"}
	assert.Error(t, c.UpsertTransaction(context.Background(), core.Transaction{ID: "a"}))
	assert.Error(t, c.DeleteTransaction(context.Background(), "a"))
}

func TestRowOf(t *testing.T) {
	ids := []string{"id", "", "a", "b"}
	assert.Equal(t, 3, rowOf(ids, "a"))
	assert.Equal(t, 4, rowOf(ids, "b"))
	assert.Equal(t, 0, rowOf(ids, "c"))
	assert.Equal(t, 0, rowOf(ids, ""))
}

func TestLoadCredentials(t *testing.T) {
	ctx := context.Background()
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	b, err := loadCredentials(ctx, Config{ServiceAccountJSON: ` {"type":"service_account"} `})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(b))

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))
	b, err = loadCredentials(ctx, Config{ServiceAccountFile: path})
	require.NoError(t, err)
	assert.Equal(t, `{"from":"file"}`, string(b))

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	b, err = loadCredentials(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, `{"from":"file"}`, string(b))

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err = loadCredentials(ctx, Config{})
	assert.Error(t, err)
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}
