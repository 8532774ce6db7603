package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"promptsheet/pkg/core/batch"
	"promptsheet/pkg/core/llm"
	"promptsheet/pkg/core/store"
	"promptsheet/pkg/core/table"
)

type fakeStore struct {
	sheets  map[string]*table.Table
	backups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sheets: make(map[string]*table.Table)}
}

func (f *fakeStore) ReadWorksheet(ctx context.Context, name string) (*table.Table, error) {
	if t, ok := f.sheets[name]; ok {
		return t.Clone(), nil
	}
	return table.New(), nil
}

func (f *fakeStore) WriteWorksheet(ctx context.Context, name string, t *table.Table) error {
	f.sheets[name] = t.Clone()
	return nil
}

func (f *fakeStore) EnsureWorksheets(ctx context.Context, names ...string) error {
	for _, n := range names {
		if _, ok := f.sheets[n]; !ok {
			f.sheets[n] = table.New()
		}
	}
	return nil
}

func (f *fakeStore) Backup(ctx context.Context, name string) (string, error) {
	f.backups++
	return "Backup_test", nil
}

type echoCaller struct {
	fail map[string]bool
}

func (c *echoCaller) Generate(ctx context.Context, prompt string, opts llm.CallOptions) (string, error) {
	if c.fail[prompt] {
		return "", errors.New("Rate limit")
	}
	return "<answer>A:" + prompt + "</answer><json>{k: 1}</json>", nil
}

func seedStore(f *fakeStore) {
	main := table.New("company", "summary")
	main.AppendRow(map[string]string{"company": "Acme"})
	main.AppendRow(map[string]string{"company": "Globex"})
	f.sheets[WorksheetMain] = main

	f.sheets[WorksheetConfig] = batch.ConfigsToTable([]batch.PromptConfig{{
		ColumnName: "summary",
		PromptText: "Describe {{ company }}",
		IsActive:   true,
	}})
}

func newTestApp(f *fakeStore, caller batch.Caller) *App {
	return New(f, caller, store.NewRunsRepo(nil), "test-model", 2, nil)
}

func TestLoadAndRunPrompts(t *testing.T) {
	f := newFakeStore()
	seedStore(f)
	app := newTestApp(f, &echoCaller{})

	if err := app.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	var progress int
	summary := app.RunPrompts(context.Background(), func(done, total int) { progress = done })

	if summary.Record.JobCount != 2 || summary.Record.Succeeded != 2 {
		t.Errorf("record wrong: %+v", summary.Record)
	}
	if progress != 2 {
		t.Errorf("progress reached %d, want 2", progress)
	}

	working := app.Table()
	if !strings.Contains(working.Value(0, "summary"), "Describe Acme") {
		t.Errorf("result not applied: %q", working.Value(0, "summary"))
	}
}

func TestRunPromptsContainsFailures(t *testing.T) {
	f := newFakeStore()
	seedStore(f)
	app := newTestApp(f, &echoCaller{fail: map[string]bool{"Describe Acme": true}})

	if err := app.LoadAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	summary := app.RunPrompts(context.Background(), nil)

	if summary.Record.Failed != 1 || summary.Record.Succeeded != 1 {
		t.Fatalf("record = %+v, want one failure, one success", summary.Record)
	}
	var failed *llm.CallError
	for _, r := range summary.Results {
		if r.Err != nil {
			failed = r.Err
		}
	}
	if failed == nil || !failed.IsRateLimit {
		t.Errorf("failure not normalized: %+v", failed)
	}

	working := app.Table()
	if working.Value(0, "summary") != "" {
		t.Errorf("failed job wrote to its cell: %q", working.Value(0, "summary"))
	}
}

func TestExtractionViews(t *testing.T) {
	f := newFakeStore()
	seedStore(f)
	app := newTestApp(f, &echoCaller{})

	if err := app.LoadAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	app.RunPrompts(context.Background(), nil)

	answers, err := app.Extraction("answer")
	if err != nil {
		t.Fatalf("Extraction failed: %v", err)
	}
	if got := answers.Value(0, "summary"); got != "A:Describe Acme" {
		t.Errorf("answer view cell = %q", got)
	}
	if answers.Value(0, "company") != "Acme" {
		t.Errorf("non-bearing column should pass through: %q", answers.Value(0, "company"))
	}
	if answers.IsEmptyCell(0, "extraction_date") {
		t.Error("extraction view missing date stamp")
	}

	jsonView, err := app.Extraction("json")
	if err != nil {
		t.Fatal(err)
	}
	if got := jsonView.Value(0, "summary"); !strings.Contains(got, `"k"`) {
		t.Errorf("json payload not repaired: %q", got)
	}
}

func TestReconcileEditorWins(t *testing.T) {
	f := newFakeStore()
	seedStore(f)
	app := newTestApp(f, &echoCaller{})
	if err := app.LoadAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	edited := table.New("company", "summary")
	edited.AppendRow(map[string]string{"company": "Acme", "summary": "manual note"})
	edited.AppendRow(map[string]string{"company": ""})
	app.SetEditorTable(edited)

	working := app.Table()
	if working.Value(0, "summary") != "manual note" {
		t.Errorf("editor cell should win: %q", working.Value(0, "summary"))
	}
	if working.Value(1, "company") != "Globex" {
		t.Errorf("empty editor cell should fall back to loaded value: %q", working.Value(1, "company"))
	}
}

func TestSaveAllPersistsEverything(t *testing.T) {
	f := newFakeStore()
	seedStore(f)
	app := newTestApp(f, &echoCaller{})
	if err := app.LoadAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	app.RunPrompts(context.Background(), nil)

	if err := app.SaveAll(context.Background()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	if f.backups != 1 {
		t.Errorf("backups = %d, want 1", f.backups)
	}

	saved := f.sheets[WorksheetMain]
	if saved == nil || !strings.Contains(saved.Value(0, "summary"), "Describe Acme") {
		t.Error("main worksheet not persisted with results")
	}
	if _, ok := f.sheets[ExtractWorksheetName("answer")]; !ok {
		t.Errorf("extraction worksheet missing; have %v", keysOf(f.sheets))
	}
	if _, ok := f.sheets[WorksheetConfig]; !ok {
		t.Error("prompt config worksheet not persisted")
	}
}

func keysOf(m map[string]*table.Table) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestExtractWorksheetName(t *testing.T) {
	if got := ExtractWorksheetName("answer"); got != "Extract_Answer" {
		t.Errorf("got %q", got)
	}
	if got := ExtractWorksheetName("JSON"); got != "Extract_Json" {
		t.Errorf("got %q", got)
	}
}
