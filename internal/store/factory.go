package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/gateway"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store/appsscript"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store/google"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store/memory"
)

// Ensure interface conformance
var (
	_ Store = (*appsscript.Client)(nil)
	_ Store = (*google.Client)(nil)
	_ Store = (*memory.Store)(nil)
)

// Config holds everything the factory needs to build any backend.
type Config struct {
	Type BackendType

	// Apps Script backend
	AppsScriptURL string

	// Sheets backend
	GoogleSpreadsheetID   string
	GoogleExpensesSheet   string
	GoogleCategoriesSheet string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
}

// Validate checks the configuration for the selected backend.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid store backend %q", c.Type)
	}
	switch c.Type {
	case AppsScriptBackend:
		if c.AppsScriptURL == "" {
			return fmt.Errorf("Apps Script URL is required for the %s backend", c.Type)
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google spreadsheet ID is required for the %s backend", c.Type)
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			return fmt.Errorf("Google credentials are required for the %s backend", c.Type)
		}
	}
	return nil
}

// Factory builds stores from configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory returns a factory logging through the given logger.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the store selected by cfg.Type.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case AppsScriptBackend:
		gw, err := gateway.New(cfg.AppsScriptURL)
		if err != nil {
			return nil, fmt.Errorf("initialize gateway: %w", err)
		}
		f.logger.Info("Initialized Apps Script store backend")
		return &Result{Store: appsscript.New(gw)}, nil

	case SheetsBackend:
		cli, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			ExpensesSheet:   cfg.GoogleExpensesSheet,
			CategoriesSheet: cfg.GoogleCategoriesSheet,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets store: %w", err)
		}
		f.logger.Info("Initialized Google Sheets store backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return &Result{Store: cli}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory store backend")
		return &Result{Store: memory.NewSeeded()}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Type)
	}
}
