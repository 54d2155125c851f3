package backend

import (
	"context"
	"path/filepath"
	"testing"

	"bizdash/internal/config"
	"bizdash/internal/core"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
	if got := GetBackendTypeStrings(); len(got) != 3 || got[0] != "sqlite" {
		t.Errorf("unexpected type strings: %v", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "ledger"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		DataDir:      "fixtures",
		AMQPQueue:    "q",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" || cfg.DataDirectory != "fixtures" || cfg.AMQPQueue != "q" {
		t.Fatalf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	recs, err := res.Backend.ListExpenseSummaries(context.Background())
	if err != nil || len(recs) == 0 {
		t.Fatalf("expected default records, got %v err=%v", recs, err)
	}
}

func TestCreateSQLiteBackendWithoutAMQP(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "bizdash.db"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		if err := res.Cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	})

	ctx := context.Background()
	if _, err := res.Backend.Append(ctx, core.ExpenseRecord{Category: "Salaries", Date: "2024-01-20", Amount: "500"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	recs, err := res.Backend.ListExpenseSummaries(ctx)
	if err != nil || len(recs) != 1 || recs[0].Category != "Salaries" {
		t.Fatalf("unexpected records: %v err=%v", recs, err)
	}
}
