package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finance/internal/store/dynamo"
	"finance/internal/store/memory"
	"finance/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case DynamoDBBackend:
		return f.createDynamoDBBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	s, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile, "transactions", s.Len())

	return &BackendResult{Store: s}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	s, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   s,
		Cleanup: s.Close,
	}, nil
}

func (f *DefaultFactory) createDynamoDBBackend(ctx context.Context, config Config) (*BackendResult, error) {
	s, err := dynamo.Open(ctx, dynamo.Config{
		Region:    config.AWSRegion,
		TableName: config.DynamoDBTable,
		Endpoint:  config.DynamoDBEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DynamoDB store: %w", err)
	}

	f.logger.Info("Initialized DynamoDB backend",
		"table", config.DynamoDBTable,
		"region", config.AWSRegion)

	return &BackendResult{Store: s}, nil
}
