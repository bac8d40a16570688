package backend

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/ledger"
	"ledger/internal/ledger/memory"
	applog "ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   ledger.Store
		closers []func() error
	)
	switch config.Type {
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		if err := repo.Ping(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("SQLite repository not reachable: %w", err)
		}
		store = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_name", config.SQLiteDBName)

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	svc := services.NewLedgerService(store, f.publisher(ctx, config))
	for _, fn := range closers {
		svc.OnClose(fn)
	}

	return &BackendResult{
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}

// publisher connects the optional AMQP client. A broker that cannot be
// reached disables events instead of failing startup.
func (f *DefaultFactory) publisher(ctx context.Context, config Config) services.EventPublisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
			applog.FieldError, err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
