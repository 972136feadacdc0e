package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/sheets"
)

// LedgerSync mirrors transaction events into an external ledger
type LedgerSync struct {
	ledger sheets.LedgerWriter
}

func NewLedgerSync(ledger sheets.LedgerWriter) *LedgerSync {
	return &LedgerSync{ledger: ledger}
}

// HandleEvent applies a single event to the ledger. Created and updated
// events upsert the row, deleted events remove it.
func (w *LedgerSync) HandleEvent(ctx context.Context, ev core.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"event_type", ev.Type,
		"transaction_id", ev.ID,
		"timestamp", ev.Timestamp)

	switch ev.Type {
	case core.EventCreated, core.EventUpdated:
		if ev.Transaction == nil {
			return fmt.Errorf("%s event for %s has no transaction", ev.Type, ev.ID)
		}
		if err := w.ledger.UpsertTransaction(ctx, *ev.Transaction); err != nil {
			return fmt.Errorf("sync transaction to ledger: %w", err)
		}
	case core.EventDeleted:
		if err := w.ledger.DeleteTransaction(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete transaction from ledger: %w", err)
		}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	slog.InfoContext(ctx, "Successfully synced transaction event",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpSync,
		applog.FieldEventType, ev.Type,
		applog.FieldTransactionID, ev.ID)
	return nil
}
