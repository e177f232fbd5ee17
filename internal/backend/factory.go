package backend

import (
	"context"
	"fmt"
	"log/slog"

	"timerito/internal/adapters"
	"timerito/internal/amqp"
	gsheet "timerito/internal/export/google"
	"timerito/internal/services"
	"timerito/internal/storage"
	"timerito/internal/store/local"
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
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	// Initialize SQLite repository
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// Initialize AMQP client (optional)
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	// Create task service and adapter
	taskService := services.NewTaskService(sqliteRepo, amqpClient)
	adapter := adapters.NewSQLiteAdapter(sqliteRepo, taskService)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Backend: adapter,
		Cleanup: taskService.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var cli *gsheet.Client
	var err error
	if config.GoogleSpreadsheetID != "" {
		cli, err = gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName,
			credentialsFromConfig(config))
	} else {
		cli, err = gsheet.NewFromEnv(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	// Budget and draft live next to the spreadsheet in a local file
	// store, the sheet only holds task rows.
	settings := local.NewFromDir(dataDir)

	f.logger.Info("Initialized Google Sheets backend", "settings_dir", dataDir)

	return &BackendResult{
		Backend: &sheetsBackend{tasks: cli, settings: settings},
		Cleanup: nil, // No cleanup needed for sheets backend
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	store := local.NewFromDir(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{
		Backend: store,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

func credentialsFromConfig(config Config) []byte {
	if config.GoogleCredentialsJSON != "" {
		return []byte(config.GoogleCredentialsJSON)
	}
	if config.GoogleCredentialsFile != "" {
		if creds, err := readCredentialsFile(config.GoogleCredentialsFile); err == nil {
			return creds
		}
	}
	return nil
}
