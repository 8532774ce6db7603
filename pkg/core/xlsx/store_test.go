package xlsx

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"promptsheet/pkg/core/table"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "work.xlsx"), nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func sampleTable() *table.Table {
	t := table.New("company", "summary")
	t.AppendRow(map[string]string{"company": "Acme", "summary": "rockets"})
	t.AppendRow(map[string]string{"company": "Globex", "summary": ""})
	return t
}

func TestWorksheetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WriteWorksheet(ctx, "Main", sampleTable()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := s.ReadWorksheet(ctx, "Main")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if cols := got.Columns(); len(cols) != 2 || cols[0] != "company" || cols[1] != "summary" {
		t.Errorf("columns = %v", cols)
	}
	if got.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", got.RowCount())
	}
	if got.Value(0, "summary") != "rockets" || got.Value(1, "company") != "Globex" {
		t.Errorf("cell values lost in round trip: %v", got.ToGrid())
	}
}

func TestWriteReplacesStaleRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	big := table.New("v")
	for i := 0; i < 5; i++ {
		big.AppendRow(map[string]string{"v": "old"})
	}
	if err := s.WriteWorksheet(ctx, "Main", big); err != nil {
		t.Fatal(err)
	}

	small := table.New("v")
	small.AppendRow(map[string]string{"v": "new"})
	if err := s.WriteWorksheet(ctx, "Main", small); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadWorksheet(ctx, "Main")
	if err != nil {
		t.Fatal(err)
	}
	if got.RowCount() != 1 || got.Value(0, "v") != "new" {
		t.Errorf("stale rows survived rewrite: %v", got.ToGrid())
	}
}

func TestReadMissingWorksheetFailsSoft(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ReadWorksheet(context.Background(), "Nonexistent")
	if err != nil {
		t.Fatalf("expected soft failure, got error: %v", err)
	}
	if got.RowCount() != 0 {
		t.Errorf("expected empty table, got %d rows", got.RowCount())
	}
}

func TestEnsureWorksheetsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.EnsureWorksheets(ctx, "Main", "Prompt_Config", "Answer"); err != nil {
		t.Fatalf("provisioning failed: %v", err)
	}
	if err := s.EnsureWorksheets(ctx, "Main", "Prompt_Config"); err != nil {
		t.Fatalf("re-provisioning failed: %v", err)
	}
}

func TestBackupSnapshotsWorksheet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.WriteWorksheet(ctx, "Main", sampleTable()); err != nil {
		t.Fatal(err)
	}

	name, err := s.Backup(ctx, "Main")
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if !strings.HasPrefix(name, "Backup_") {
		t.Errorf("backup name = %q, want Backup_ prefix", name)
	}

	snap, err := s.ReadWorksheet(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	if snap.RowCount() != 2 || snap.Value(0, "company") != "Acme" {
		t.Errorf("snapshot contents wrong: %v", snap.ToGrid())
	}
}
