package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"bizdash/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states of a stored summary.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// ErrNotFound is returned when a summary id does not exist.
var ErrNotFound = errors.New("expense summary not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements source.SummaryWriter
func (r *SQLiteRepository) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	row, err := r.queries.CreateExpenseSummary(ctx, CreateExpenseSummaryParams{
		Category: rec.Category,
		Date:     rec.Date,
		Amount:   rec.Amount,
	})
	if err != nil {
		return "", fmt.Errorf("create expense summary: %w", err)
	}

	slog.InfoContext(ctx, "Expense summary saved to SQLite",
		"id", row.ID,
		"category", row.Category,
		"date", row.Date,
		"amount", row.Amount)

	return strconv.FormatInt(row.ID, 10), nil
}

// ListExpenseSummaries implements source.ExpenseSource. Rows come back newest
// date first.
func (r *SQLiteRepository) ListExpenseSummaries(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpenseSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expense summaries: %w", err)
	}
	out := make([]core.ExpenseRecord, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out, nil
}

// GetSummary returns a stored summary by id.
func (r *SQLiteRepository) GetSummary(ctx context.Context, id int64) (ExpenseSummary, error) {
	row, err := r.queries.GetExpenseSummary(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ExpenseSummary{}, fmt.Errorf("summary %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ExpenseSummary{}, fmt.Errorf("get expense summary %d: %w", id, err)
	}
	return row, nil
}

// GetPendingSync returns up to limit summaries not yet mirrored.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]ExpenseSummary, error) {
	rows, err := r.queries.GetPendingSyncSummaries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync summaries: %w", err)
	}
	return rows, nil
}

// MarkSynced marks a summary as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.setStatus(ctx, id, SyncDone); err != nil {
		return fmt.Errorf("mark summary synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense summary marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a summary as failed to mirror. It will not be retried
// by the pending sweep.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.setStatus(ctx, id, SyncError); err != nil {
		return fmt.Errorf("mark summary sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense summary marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) setStatus(ctx context.Context, id int64, status string) error {
	n, err := r.queries.SetSyncStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("summary %d: %w", id, ErrNotFound)
	}
	return nil
}

// Record converts a row to the domain record.
func (s ExpenseSummary) Record() core.ExpenseRecord {
	return core.ExpenseRecord{Category: s.Category, Date: s.Date, Amount: s.Amount}
}
