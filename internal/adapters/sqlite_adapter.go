package adapters

import (
	"context"

	"bizdash/internal/core"
	"bizdash/internal/services"
	"bizdash/internal/storage"
)

// SQLiteAdapter serves reads straight from the repository and routes writes
// through the SummaryService so every new row is announced to the sync worker.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.SummaryService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.SummaryService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements source.SummaryWriter
func (a *SQLiteAdapter) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	return a.service.Record(ctx, rec)
}

// ListExpenseSummaries implements source.ExpenseSource
func (a *SQLiteAdapter) ListExpenseSummaries(ctx context.Context) ([]core.ExpenseRecord, error) {
	return a.storage.ListExpenseSummaries(ctx)
}
