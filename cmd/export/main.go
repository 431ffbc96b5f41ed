// Command export writes one month of expenses from the configured store
// to an xlsx or csv file, for use from cron jobs or the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/config"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/export"
	applog "github.com/nongduongsteams-ai/app-chi-tieu/internal/log"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		month    = flag.String("month", time.Now().Format("2006-01"), "month to export (YYYY-MM)")
		format   = flag.String("format", "xlsx", "output format: xlsx or csv")
		category = flag.String("category", "", "only export this category (default: all)")
		out      = flag.String("out", "", "output path (default: derived file name in the working directory)")
	)
	flag.Parse()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentExport,
		Output:    os.Stderr,
	})

	if _, err := time.Parse("2006-01", *month); err != nil {
		logger.Error("Invalid month", "month", *month)
		os.Exit(2)
	}
	f := export.Format(*format)
	if !f.Valid() {
		logger.Error("Invalid format", "format", *format)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	factory := store.NewFactory(logger.Logger)
	result, err := factory.Create(ctx, store.Config{
		Type:                  store.BackendType(cfg.DataBackend),
		AppsScriptURL:         cfg.AppsScriptURL,
		GoogleSpreadsheetID:   cfg.GoogleSpreadsheetID,
		GoogleExpensesSheet:   cfg.GoogleExpensesSheet,
		GoogleCategoriesSheet: cfg.GoogleCategoriesSheet,
		GoogleCredentialsFile: cfg.GoogleCredentialsFile,
		GoogleCredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize data store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}

	expenses, err := result.Store.GetExpenses(ctx)
	if err != nil {
		logger.Error("Failed to fetch expenses", "error", err)
		os.Exit(1)
	}

	records := core.MonthFilter(expenses, *month)
	allSelected := *category == ""
	if !allSelected {
		subset := make([]core.ExpenseRecord, 0, len(records))
		for _, rec := range records {
			if rec.Category == *category {
				subset = append(subset, rec)
			}
		}
		records = subset
	}

	path := *out
	if path == "" {
		path = export.FileName(*month, allSelected, f)
	}

	file, err := os.Create(path)
	if err != nil {
		logger.Error("Failed to create output file", "error", err, "path", path)
		os.Exit(1)
	}
	if err := export.Write(file, records, f); err != nil {
		file.Close()
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}
	if err := file.Close(); err != nil {
		logger.Error("Failed to close output file", "error", err, "path", path)
		os.Exit(1)
	}

	fmt.Printf("exported %d records to %s\n", len(records), path)
}
