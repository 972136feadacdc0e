// Package store defines the contract every transaction backend implements.
package store

import (
	"context"
	"errors"

	"finance/internal/core"
)

// ErrDuplicateID is returned by Insert when the id is already taken.
var ErrDuplicateID = errors.New("duplicate transaction id")

// Store is the ordered collection of live transactions.
//
// Implementations return *core.NotFoundError from Update and Delete when no
// transaction has the given id.
type Store interface {
	// List returns every transaction in insertion order.
	List(ctx context.Context) ([]core.Transaction, error)

	// Insert appends t to the end of the collection.
	Insert(ctx context.Context, t core.Transaction) error

	// Update applies patch to the transaction with the given id and returns
	// the updated record.
	Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error)

	// Delete removes the transaction with the given id.
	Delete(ctx context.Context, id string) error
}

// Closer is implemented by backends holding external resources.
type Closer interface {
	Close() error
}
