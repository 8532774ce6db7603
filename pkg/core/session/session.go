// Package session owns a working copy of one document: the main data table,
// its prompt configuration, and the extraction views derived from answers.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"promptsheet/pkg/core/batch"
	"promptsheet/pkg/core/store"
	"promptsheet/pkg/core/table"
	"promptsheet/pkg/core/tagext"
	"promptsheet/pkg/core/utils"
)

// Worksheet names of the document layout. Extraction worksheets are dynamic:
// Extract_<Tag> per extracted tag.
const (
	WorksheetMain    = "Main"
	WorksheetConfig  = "Prompt_Config"
	WorksheetSources = "Sources"
	WorksheetAnswer  = "Answer"

	extractPrefix = "Extract_"
)

// extractionDateColumn stamps extraction worksheets with when they were
// computed.
const extractionDateColumn = "extraction_date"

// DefaultTags are the sections the pipeline extracts from every answer.
var DefaultTags = []string{"answer", "reasoning", "sources", "annotations", "json"}

// Store is the persistence dependency: worksheets of one document,
// regardless of whether they live in a spreadsheet service or a local file.
type Store interface {
	ReadWorksheet(ctx context.Context, name string) (*table.Table, error)
	WriteWorksheet(ctx context.Context, name string, t *table.Table) error
	EnsureWorksheets(ctx context.Context, names ...string) error
	Backup(ctx context.Context, name string) (string, error)
}

// App is the session-scoped orchestrator: it loads the document, runs prompt
// batches against it, derives extraction views, and persists everything back.
type App struct {
	mu sync.Mutex

	store  Store
	caller batch.Caller
	runs   *store.RunsRepo
	logger *zap.Logger

	model         string
	maxConcurrent int

	session table.Session
	configs []batch.PromptConfig
	extract map[string]*table.Table
}

// New wires an App from its collaborators. runs may be nil when history is
// not configured.
func New(st Store, caller batch.Caller, runs *store.RunsRepo, model string, maxConcurrent int, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		store:         st,
		caller:        caller,
		runs:          runs,
		logger:        logger,
		model:         model,
		maxConcurrent: maxConcurrent,
		extract:       make(map[string]*table.Table),
	}
}

// Connect provisions the fixed worksheets so a fresh document is usable
// immediately.
func (a *App) Connect(ctx context.Context) error {
	return a.store.EnsureWorksheets(ctx, WorksheetMain, WorksheetConfig, WorksheetSources, WorksheetAnswer)
}

// LoadAll pulls the main table and prompt configuration from the store into
// the session. The loaded table lands in the sheets slot; editor state, if
// any, survives for reconciliation.
func (a *App) LoadAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	main, err := a.store.ReadWorksheet(ctx, WorksheetMain)
	if err != nil {
		return fmt.Errorf("failed to load main worksheet: %w", err)
	}
	cfgTable, err := a.store.ReadWorksheet(ctx, WorksheetConfig)
	if err != nil {
		return fmt.Errorf("failed to load prompt config: %w", err)
	}

	a.session.SheetsVersion = main
	a.configs = batch.ParseConfigTable(cfgTable)
	a.logger.Info("session loaded",
		zap.Int("rows", main.RowCount()),
		zap.Int("prompt_configs", len(a.configs)))
	return nil
}

// SetEditorTable installs in-process edits, to be reconciled against the
// loaded copy on the next run or save.
func (a *App) SetEditorTable(t *table.Table) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.EditorVersion = t
}

// Table returns the reconciled working table.
func (a *App) Table() *table.Table {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Reconcile()
}

// Configs returns the parsed prompt configurations.
func (a *App) Configs() []batch.PromptConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]batch.PromptConfig, len(a.configs))
	copy(out, a.configs)
	return out
}

// SetConfigs replaces the prompt configurations.
func (a *App) SetConfigs(configs []batch.PromptConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configs = configs
}

// RunSummary is what a batch run hands back to callers: the run record plus
// every settled result.
type RunSummary struct {
	Record  store.RunRecord      `json:"record"`
	Results []batch.PromptResult `json:"results"`
}

// RunPrompts reconciles the session, expands the active prompt configurations
// into jobs, executes them, applies successful results, recomputes the
// extraction views, and records the run. Failed jobs are reported in the
// summary, never raised.
func (a *App) RunPrompts(ctx context.Context, onProgress func(done, total int)) RunSummary {
	a.mu.Lock()
	working := a.session.Reconcile()
	configs := make([]batch.PromptConfig, len(a.configs))
	copy(configs, a.configs)
	a.mu.Unlock()

	jobs := batch.BuildJobs(working, configs)
	a.logger.Info("batch starting",
		zap.Int("jobs", len(jobs)),
		zap.String("model", a.model))

	started := time.Now()
	results := batch.ExecuteBatch(ctx, a.caller, jobs, batch.Options{
		MaxConcurrent: a.maxConcurrent,
		OnProgress:    onProgress,
	})
	batch.ApplyResults(working, results)

	a.mu.Lock()
	a.session.EditorVersion = working
	a.recomputeExtractionsLocked(working)
	a.mu.Unlock()

	rec := store.SummarizeRun(a.model, results, started)
	if err := a.runs.SaveRun(ctx, rec, results); err != nil {
		a.logger.Warn("run history write failed", zap.Error(err))
	}
	a.logger.Info("batch finished",
		zap.Int("succeeded", rec.Succeeded),
		zap.Int("failed", rec.Failed),
		zap.Duration("duration", rec.Duration))

	return RunSummary{Record: rec, Results: results}
}

// recomputeExtractionsLocked rebuilds the per-tag extraction views from the
// working table and stamps each with the extraction date. The json view gets
// its payloads repaired so the sheet always holds parseable JSON.
func (a *App) recomputeExtractionsLocked(working *table.Table) {
	stamp := time.Now().Format("2006-01-02")
	for _, tag := range DefaultTags {
		view := tagext.ExtractTable(working, tag)
		if tag == "json" {
			repairJSONColumns(working, view)
		}
		view.AddColumn(extractionDateColumn)
		for row := 0; row < view.RowCount(); row++ {
			view.SetValue(row, extractionDateColumn, stamp)
		}
		a.extract[tag] = view
	}
}

// repairJSONColumns normalizes extracted json payloads in place. Only cells
// that the extraction actually replaced are touched.
func repairJSONColumns(original, view *table.Table) {
	for _, col := range view.Columns() {
		for row := 0; row < view.RowCount(); row++ {
			v := view.Value(row, col)
			if v == "" || v == original.Value(row, col) {
				continue
			}
			view.SetValue(row, col, utils.MustRepairJSON(v))
		}
	}
}

// Extraction returns the derived view for one tag, recomputing on demand if
// no batch has run yet.
func (a *App) Extraction(tag string) (*table.Table, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, fmt.Errorf("empty extraction tag")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if view, ok := a.extract[tag]; ok {
		return view, nil
	}
	view := tagext.ExtractTable(a.session.Reconcile(), tag)
	a.extract[tag] = view
	return view, nil
}

// ExtractWorksheetName maps a tag to its persisted worksheet title, e.g.
// Extract_Answer.
func ExtractWorksheetName(tag string) string {
	if tag == "" {
		return extractPrefix + "Answer"
	}
	return extractPrefix + strings.ToUpper(tag[:1]) + strings.ToLower(tag[1:])
}

// SaveAll backs up the main worksheet, then writes the working table, the
// prompt configuration, and every extraction view.
func (a *App) SaveAll(ctx context.Context) error {
	a.mu.Lock()
	working := a.session.Reconcile()
	configs := make([]batch.PromptConfig, len(a.configs))
	copy(configs, a.configs)
	views := make(map[string]*table.Table, len(a.extract))
	for tag, view := range a.extract {
		views[tag] = view
	}
	a.mu.Unlock()

	if _, err := a.store.Backup(ctx, WorksheetMain); err != nil {
		a.logger.Warn("backup failed, continuing with save", zap.Error(err))
	}

	if err := a.store.WriteWorksheet(ctx, WorksheetMain, working); err != nil {
		return err
	}
	if err := a.store.WriteWorksheet(ctx, WorksheetConfig, batch.ConfigsToTable(configs)); err != nil {
		return err
	}

	names := make([]string, 0, len(views))
	for tag := range views {
		names = append(names, ExtractWorksheetName(tag))
	}
	if len(names) > 0 {
		if err := a.store.EnsureWorksheets(ctx, names...); err != nil {
			return err
		}
	}
	for tag, view := range views {
		if err := a.store.WriteWorksheet(ctx, ExtractWorksheetName(tag), view); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.session.SheetsVersion = working
	a.session.EditorVersion = nil
	a.mu.Unlock()
	return nil
}
