// Package store defines the boundary to the remote expense store and a
// factory over its implementations. Every write goes through here and the
// caller is expected to re-fetch afterwards: the store serializes writes
// and returns the post-write truth on the next read, so nothing is patched
// locally.
package store

import (
	"context"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
)

// Store is the full operation surface the views consume.
type Store interface {
	GetExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
	GetCategories(ctx context.Context) ([]core.CategoryRecord, error)
	// GetStats returns the store-computed overall summary.
	GetStats(ctx context.Context) (core.Stats, error)

	AddExpense(ctx context.Context, rec core.ExpenseRecord) error
	EditExpense(ctx context.Context, rec core.ExpenseRecord) error
	DeleteExpense(ctx context.Context, id core.ID, email string) error

	AddCategory(ctx context.Context, rec core.CategoryRecord) error
	EditCategory(ctx context.Context, rec core.CategoryRecord) error
	DeleteCategory(ctx context.Context, id core.ID) error
}

// CleanupFunc releases resources held by a store implementation.
type CleanupFunc func() error

// Result bundles a ready store with its optional cleanup.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// BackendType selects a store implementation.
type BackendType string

const (
	// AppsScriptBackend talks to the Apps Script web app endpoint.
	AppsScriptBackend BackendType = "appsscript"
	// SheetsBackend reads and writes the spreadsheet directly through the
	// Google Sheets API, bypassing the Apps Script layer.
	SheetsBackend BackendType = "sheets"
	// MemoryBackend is an in-process store for development and tests.
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

// IsValid reports whether the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case AppsScriptBackend, SheetsBackend, MemoryBackend:
		return true
	}
	return false
}
