package batch

import (
	"strings"

	"promptsheet/pkg/core/prompt"
	"promptsheet/pkg/core/table"
)

// LockedSentinel in a configuration's prompt text marks its column as not to
// be processed. It is the default prompt for freshly added columns, so a
// config row stays inert until someone writes a real prompt.
const LockedSentinel = "LOCKED"

// PromptConfig is one row of the prompt configuration sheet: which output
// column to fill, the template to render per row, and the toggles governing
// overwrites and search.
type PromptConfig struct {
	ColumnName  string `json:"column_name"`
	PromptText  string `json:"prompt_text"`
	Model       string `json:"model,omitempty"`
	ReplaceMode bool   `json:"replace_mode"`
	WebSearch   bool   `json:"web_search"`
	IsActive    bool   `json:"is_active"`
}

// Configuration sheet header names.
const (
	cfgColColumn  = "column_name"
	cfgColPrompt  = "prompt_text"
	cfgColModel   = "model"
	cfgColReplace = "replace_mode"
	cfgColSearch  = "web_search"
	cfgColActive  = "is_active"
)

// parseBool accepts the sheet-typical truthy spellings. Anything else,
// including empty, is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "x", "on":
		return true
	}
	return false
}

// ParseConfigTable reads prompt configurations out of the configuration
// sheet. Rows without a target column or prompt text are dropped.
func ParseConfigTable(t *table.Table) []PromptConfig {
	var configs []PromptConfig
	for i := 0; i < t.RowCount(); i++ {
		cfg := PromptConfig{
			ColumnName:  strings.TrimSpace(t.Value(i, cfgColColumn)),
			PromptText:  t.Value(i, cfgColPrompt),
			Model:       strings.TrimSpace(t.Value(i, cfgColModel)),
			ReplaceMode: parseBool(t.Value(i, cfgColReplace)),
			WebSearch:   parseBool(t.Value(i, cfgColSearch)),
			IsActive:    parseBool(t.Value(i, cfgColActive)),
		}
		if cfg.ColumnName == "" || strings.TrimSpace(cfg.PromptText) == "" {
			continue
		}
		configs = append(configs, cfg)
	}
	return configs
}

// ConfigsToTable renders configurations back into sheet shape, the inverse
// of ParseConfigTable.
func ConfigsToTable(configs []PromptConfig) *table.Table {
	t := table.New(cfgColColumn, cfgColPrompt, cfgColModel, cfgColReplace, cfgColSearch, cfgColActive)
	for _, cfg := range configs {
		t.AppendRow(map[string]string{
			cfgColColumn:  cfg.ColumnName,
			cfgColPrompt:  cfg.PromptText,
			cfgColModel:   cfg.Model,
			cfgColReplace: formatBool(cfg.ReplaceMode),
			cfgColSearch:  formatBool(cfg.WebSearch),
			cfgColActive:  formatBool(cfg.IsActive),
		})
	}
	return t
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// BuildJobs expands active configurations against the data table into one job
// per eligible cell. Configurations whose prompt text is the locked sentinel
// are excluded before any row is considered; a cell is skipped when it
// already has content and the configuration is not in replace mode. Because
// skipped cells produce no jobs, re-running a finished batch is naturally
// idempotent outside replace mode.
func BuildJobs(data *table.Table, configs []PromptConfig) []PromptJob {
	var jobs []PromptJob
	for _, cfg := range configs {
		if !cfg.IsActive {
			continue
		}
		if strings.TrimSpace(cfg.PromptText) == LockedSentinel {
			continue
		}
		for row := 0; row < data.RowCount(); row++ {
			if !cfg.ReplaceMode && !data.IsEmptyCell(row, cfg.ColumnName) {
				continue
			}
			jobs = append(jobs, PromptJob{
				RowIndex:    row,
				ColumnName:  cfg.ColumnName,
				Prompt:      prompt.Render(cfg.PromptText, data.RowValues(row)),
				Model:       cfg.Model,
				NeedsSearch: cfg.WebSearch,
			})
		}
	}
	return jobs
}
