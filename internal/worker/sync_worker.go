package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bizdash/internal/amqp"
	"bizdash/internal/source"
	"bizdash/internal/storage"
)

// SummaryRepository is the slice of the SQLite repository the worker needs.
type SummaryRepository interface {
	GetSummary(ctx context.Context, id int64) (storage.ExpenseSummary, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.ExpenseSummary, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors stored expense summaries to Google Sheets.
type SyncWorker struct {
	storage   SummaryRepository
	sheets    source.SummaryWriter
	batchSize int
}

func NewSyncWorker(storage SummaryRepository, sheets source.SummaryWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single summary sync message from AMQP.
// Messages for rows that no longer exist are dropped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SummarySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "timestamp", msg.Timestamp)

	row, err := w.storage.GetSummary(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Summary not found, dropping sync message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get summary from storage: %w", err)
	}

	// Redelivered messages for rows that already made it are no-ops.
	if row.SyncStatus == storage.SyncDone {
		slog.DebugContext(ctx, "Summary already synced", "id", msg.ID)
		return nil
	}

	if err := w.syncSummary(ctx, row); err != nil {
		return fmt.Errorf("sync summary to sheets: %w", err)
	}
	return nil
}

// ProcessPending mirrors summaries that haven't been synced yet. It is the
// fallback for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending summaries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending summaries", "count", len(pending))

	synced, failed := 0, 0
	for _, row := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncSummary(ctx, row); err != nil {
			slog.ErrorContext(ctx, "Failed to sync summary", "id", row.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sweep completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) syncSummary(ctx context.Context, row storage.ExpenseSummary) error {
	ref, err := w.sheets.Append(ctx, row.Record())
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, row.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", row.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, row.ID); err != nil {
		// The row reached the sheet; a later sweep may append it again.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", row.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced summary",
		"id", row.ID,
		"sheets_ref", ref,
		"category", row.Category,
		"date", row.Date,
		"amount", row.Amount)
	return nil
}
