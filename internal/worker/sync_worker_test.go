package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bizdash/internal/amqp"
	"bizdash/internal/core"
	"bizdash/internal/storage"
)

type fakeRepo struct {
	rows   map[int64]storage.ExpenseSummary
	synced []int64
	failed []int64
}

func newFakeRepo(rows ...storage.ExpenseSummary) *fakeRepo {
	r := &fakeRepo{rows: map[int64]storage.ExpenseSummary{}}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeRepo) GetSummary(_ context.Context, id int64) (storage.ExpenseSummary, error) {
	row, ok := r.rows[id]
	if !ok {
		return storage.ExpenseSummary{}, fmt.Errorf("summary %d: %w", id, storage.ErrNotFound)
	}
	return row, nil
}

func (r *fakeRepo) GetPendingSync(_ context.Context, limit int) ([]storage.ExpenseSummary, error) {
	var out []storage.ExpenseSummary
	for id := int64(1); id <= int64(len(r.rows)) && len(out) < limit; id++ {
		if row, ok := r.rows[id]; ok && row.SyncStatus == storage.SyncPending {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkSynced(_ context.Context, id int64) error {
	r.synced = append(r.synced, id)
	row := r.rows[id]
	row.SyncStatus = storage.SyncDone
	r.rows[id] = row
	return nil
}

func (r *fakeRepo) MarkSyncError(_ context.Context, id int64) error {
	r.failed = append(r.failed, id)
	row := r.rows[id]
	row.SyncStatus = storage.SyncError
	r.rows[id] = row
	return nil
}

type fakeSheet struct {
	appended []core.ExpenseRecord
	failOn   string
}

func (s *fakeSheet) Append(_ context.Context, rec core.ExpenseRecord) (string, error) {
	if rec.Category == s.failOn {
		return "", errors.New("quota exceeded")
	}
	s.appended = append(s.appended, rec)
	return fmt.Sprintf("ExpenseSummary!A%d:C%d", len(s.appended)+1, len(s.appended)+1), nil
}

func row(id int64, category, status string) storage.ExpenseSummary {
	return storage.ExpenseSummary{ID: id, Category: category, Date: "2024-01-05", Amount: "100", SyncStatus: status}
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newFakeRepo(row(1, "Office", storage.SyncPending), row(2, "Salaries", storage.SyncDone))
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, 10)
	ctx := context.Background()

	if err := w.HandleSyncMessage(ctx, amqp.NewSummarySyncMessage(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.appended) != 1 || sheet.appended[0].Category != "Office" {
		t.Fatalf("expected Office appended, got %+v", sheet.appended)
	}
	if len(repo.synced) != 1 || repo.synced[0] != 1 {
		t.Fatalf("expected row 1 marked synced, got %v", repo.synced)
	}

	// Already synced rows are skipped.
	if err := w.HandleSyncMessage(ctx, amqp.NewSummarySyncMessage(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.appended) != 1 {
		t.Fatalf("synced row should not be appended again")
	}

	// Unknown rows are dropped without error.
	if err := w.HandleSyncMessage(ctx, amqp.NewSummarySyncMessage(99)); err != nil {
		t.Fatalf("missing row should be dropped, got %v", err)
	}
}

func TestHandleSyncMessageSheetFailure(t *testing.T) {
	repo := newFakeRepo(row(1, "Office", storage.SyncPending))
	w := NewSyncWorker(repo, &fakeSheet{failOn: "Office"}, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewSummarySyncMessage(1)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if len(repo.failed) != 1 || repo.rows[1].SyncStatus != storage.SyncError {
		t.Fatalf("expected row marked with sync error, got %+v", repo.rows[1])
	}
}

func TestProcessPending(t *testing.T) {
	repo := newFakeRepo(
		row(1, "Office", storage.SyncPending),
		row(2, "Salaries", storage.SyncDone),
		row(3, "Professional", storage.SyncPending),
		row(4, "Office", storage.SyncPending),
	)
	sheet := &fakeSheet{failOn: "Professional"}
	w := NewSyncWorker(repo, sheet, 2)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Batch of two: rows 1 and 3; row 3 fails.
	if len(repo.synced) != 1 || repo.synced[0] != 1 {
		t.Fatalf("expected only row 1 synced, got %v", repo.synced)
	}
	if len(repo.failed) != 1 || repo.failed[0] != 3 {
		t.Fatalf("expected row 3 failed, got %v", repo.failed)
	}

	// Next sweep picks up the remaining pending row.
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.synced) != 2 || repo.synced[1] != 4 {
		t.Fatalf("expected row 4 synced on second sweep, got %v", repo.synced)
	}
}

func TestProcessPendingCancelled(t *testing.T) {
	repo := newFakeRepo(row(1, "Office", storage.SyncPending))
	w := NewSyncWorker(repo, &fakeSheet{}, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.ProcessPending(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
