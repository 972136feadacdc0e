package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionEvent(t *testing.T) {
	at := time.Date(2025, 11, 2, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	tx := Transaction{ID: "t1", Description: "Book", Amount: NewAmount(-19.99), Category: "Leisure", Date: "2025-10-05"}

	created := NewTransactionEvent(EventCreated, tx, at)
	require.NotNil(t, created.Transaction)
	assert.Equal(t, "t1", created.ID)
	assert.Equal(t, time.UTC, created.Timestamp.Location())
	assert.True(t, created.Timestamp.Equal(at))
	assert.True(t, created.Valid())

	deleted := NewTransactionEvent(EventDeleted, Transaction{ID: "t1"}, at)
	assert.Nil(t, deleted.Transaction)
	assert.True(t, deleted.Valid())
}
