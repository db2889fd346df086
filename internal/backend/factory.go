package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendlens/internal/amqp"
	"spendlens/internal/sheets"
	"spendlens/internal/sheets/memory"
	"spendlens/internal/storage"
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

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", repo.SchemaVersion())

	return &BackendResult{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{
		Store:   store,
		Ping:    func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}, nil
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached is logged and the backend runs without publishing.
func (f *DefaultFactory) attachPublisher(_ context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		f.logger.Info("AMQP not configured, raised alerts will not be published")
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without alert publishing", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		return errors.Join(client.Close(), storeCleanup())
	}
}

var _ sheets.AlertPublisher = (*amqp.Client)(nil)
