package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finance/internal/core"
	"finance/internal/store"
)

// maxIDAttempts bounds id regeneration when a backend reports a clash.
const maxIDAttempts = 3

// EventPublisher delivers transaction events to other processes.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev core.TransactionEvent) error
}

// TransactionService validates input, assigns ids and publishes events
// around a Store.
type TransactionService struct {
	store  store.Store
	events EventPublisher
	newID  func() string
	now    func() time.Time
}

// NewTransactionService returns a service over s. events may be nil.
func NewTransactionService(s store.Store, events EventPublisher) *TransactionService {
	return &TransactionService{
		store:  s,
		events: events,
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
	}
}

// List returns all transactions in insertion order.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

// Create validates in, stores a new transaction under a fresh id and
// returns it.
func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.ValidateCreate(); err != nil {
		return core.Transaction{}, err
	}

	now := s.now()
	var t core.Transaction
	for attempt := 1; ; attempt++ {
		t = in.NewTransaction(s.newID(), now)
		err := s.store.Insert(ctx, t)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicateID) || attempt == maxIDAttempts {
			return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
		}
		slog.WarnContext(ctx, "Generated transaction id already in use, retrying", "id", t.ID, "attempt", attempt)
	}

	s.publish(ctx, core.EventCreated, t)
	return t, nil
}

// Update overwrites the fields present in in on the transaction with id.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.ValidatePatch(); err != nil {
		return core.Transaction{}, err
	}

	t, err := s.store.Update(ctx, id, in.Patch())
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.publish(ctx, core.EventUpdated, t)
	return t, nil
}

// Delete removes the transaction with id.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.publish(ctx, core.EventDeleted, core.Transaction{ID: id})
	return nil
}

// Summary aggregates a single snapshot of the store.
func (s *TransactionService) Summary(ctx context.Context) (core.Summary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(items), nil
}

// Ping checks that the store answers.
func (s *TransactionService) Ping(ctx context.Context) error {
	_, err := s.store.List(ctx)
	return err
}

func (s *TransactionService) publish(ctx context.Context, typ core.EventType, t core.Transaction) {
	if s.events == nil {
		return
	}
	ev := core.NewTransactionEvent(typ, t, s.now())
	if err := s.events.PublishTransactionEvent(ctx, ev); err != nil {
		// Don't fail the request, the transaction is already stored
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"event_type", typ, "transaction_id", t.ID, "error", err)
	}
}
