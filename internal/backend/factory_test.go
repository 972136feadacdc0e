package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance/internal/config"
	"finance/internal/store/memory"
	"finance/internal/store/sqlite"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("sheets").IsValid())
	assert.Equal(t, []string{"memory", "sqlite", "dynamodb"}, GetBackendTypeStrings())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory without seed", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"dynamodb complete", Config{Type: DynamoDBBackend, DynamoDBTable: "T", AWSRegion: "eu-west-1"}, false},
		{"dynamodb without table", Config{Type: DynamoDBBackend, AWSRegion: "eu-west-1"}, true},
		{"dynamodb without region", Config{Type: DynamoDBBackend, DynamoDBTable: "T"}, true},
		{"unknown", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:      "dynamodb",
		DynamoDBTable:    "Transactions",
		AWSRegion:        "us-east-1",
		DynamoDBEndpoint: "http://localhost:8000",
	})
	require.NoError(t, err)
	assert.Equal(t, DynamoDBBackend, cfg.Type)
	assert.Equal(t, "Transactions", cfg.DynamoDBTable)
	assert.Equal(t, "http://localhost:8000", cfg.DynamoDBEndpoint)
}

func TestCreateMemoryBackend(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[{"id":"1","description":"x","amount":1,"category":"c","date":"2025-01-01"}]`), 0o644))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	require.NoError(t, err)
	assert.Nil(t, res.Cleanup)

	s, ok := res.Store.(*memory.Store)
	require.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestCreateSQLiteBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "finance.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	_, ok := res.Store.(*sqlite.Store)
	assert.True(t, ok)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
}
