// Package batch turns prompt configurations and a data table into concurrent
// model calls, collecting per-cell results without letting one failure abort
// the run.
package batch

import "promptsheet/pkg/core/llm"

// PromptJob is one cell's worth of work: a fully rendered prompt destined for
// a specific row and output column.
type PromptJob struct {
	RowIndex    int    `json:"row_index"`
	ColumnName  string `json:"column_name"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model,omitempty"`
	NeedsSearch bool   `json:"needs_search"`
}

// PromptResult pairs a job's coordinates with its outcome. Err is
// authoritative: when set, Text is not meaningful regardless of content.
type PromptResult struct {
	RowIndex   int            `json:"row_index"`
	ColumnName string         `json:"column_name"`
	Text       string         `json:"response,omitempty"`
	Err        *llm.CallError `json:"error,omitempty"`
}

// OK reports whether the job completed without error.
func (r PromptResult) OK() bool { return r.Err == nil }
