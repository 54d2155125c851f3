package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"bizdash/internal/core"
)

// SummaryStore persists summaries and returns the new row id as a string.
type SummaryStore interface {
	Append(ctx context.Context, rec core.ExpenseRecord) (string, error)
	Close() error
}

// SyncPublisher announces a stored summary to the sync worker.
type SyncPublisher interface {
	PublishSummarySync(ctx context.Context, id int64) error
	Close() error
}

// SummaryService records expense summaries locally and asks the worker to
// mirror them to Google Sheets.
type SummaryService struct {
	storage   SummaryStore
	publisher SyncPublisher
}

func NewSummaryService(storage SummaryStore, publisher SyncPublisher) *SummaryService {
	return &SummaryService{
		storage:   storage,
		publisher: publisher,
	}
}

// Append implements source.SummaryWriter.
func (s *SummaryService) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	return s.Record(ctx, rec)
}

// Record saves the summary to SQLite first and then publishes a sync
// message. A failed publish is logged only: the row stays pending and the
// worker's sweep picks it up.
func (s *SummaryService) Record(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if s.storage == nil {
		return "", errors.New("summary storage not configured")
	}
	ref, err := s.storage.Append(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse summary ID", "ref", ref, "error", err)
		return ref, nil
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return ref, nil
	}
	if err := s.publisher.PublishSummarySync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
	return ref, nil
}

// Close closes both storage and AMQP connections.
func (s *SummaryService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close summary service: %w", errors.Join(errs...))
	}
	return nil
}
