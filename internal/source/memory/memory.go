package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bizdash/internal/core"
	"bizdash/internal/source"
)

var (
	_ source.ExpenseSource = (*Store)(nil)
	_ source.SummaryWriter = (*Store)(nil)
)

// SeedFile is the file NewFromFiles looks for under its base directory.
const SeedFile = "seed_expenses.csv"

type Store struct {
	mu    sync.Mutex
	items []core.ExpenseRecord
}

func New(records []core.ExpenseRecord) *Store {
	return &Store{items: append([]core.ExpenseRecord(nil), records...)}
}

// NewFromFiles seeds the store from base/seed_expenses.csv, falling back to a
// small built-in data set when the file is missing or empty.
func NewFromFiles(base string) *Store {
	path := filepath.Join(base, SeedFile)
	records, err := readSeed(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Ignoring unreadable seed file", "path", path, "error", err)
	}
	if len(records) == 0 {
		records = defaultRecords()
	}
	return New(records)
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, rec)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListExpenseSummaries returns a copy of every stored record.
func (s *Store) ListExpenseSummaries(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseRecord(nil), s.items...), nil
}

// readSeed parses category,date,amount rows. Blank lines and lines starting
// with # are skipped, as is a header row naming the columns.
func readSeed(path string) ([]core.ExpenseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	var out []core.ExpenseRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("read %s: %w", path, err)
		}
		if strings.EqualFold(strings.TrimSpace(row[0]), "category") {
			continue
		}
		out = append(out, core.ExpenseRecord{
			Category: strings.TrimSpace(row[0]),
			Date:     strings.TrimSpace(row[1]),
			Amount:   strings.TrimSpace(row[2]),
		})
	}
	return out, nil
}

func defaultRecords() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		{Category: "Office", Date: "2024-01-05T00:00:00Z", Amount: "100"},
		{Category: "Salaries", Date: "2024-01-20T00:00:00Z", Amount: "500"},
		{Category: "Professional", Date: "2024-01-28T00:00:00Z", Amount: "250"},
		{Category: "Office", Date: "2024-02-10T00:00:00Z", Amount: "50"},
		{Category: "Salaries", Date: "2024-02-20T00:00:00Z", Amount: "520"},
		{Category: "Professional", Date: "2024-03-03T00:00:00Z", Amount: "180"},
	}
}
