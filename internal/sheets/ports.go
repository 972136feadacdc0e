package sheets

import (
	"context"

	"finance/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerWriter mirrors transactions into an external ledger keyed by id.
	LedgerWriter interface {
		// UpsertTransaction writes t, replacing any row with the same id.
		UpsertTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction removes the row for id. Missing rows are not an error.
		DeleteTransaction(ctx context.Context, id string) error
	}
)
