package batch

import (
	"testing"

	"promptsheet/pkg/core/table"
)

func configTable(rows ...map[string]string) *table.Table {
	t := table.New(cfgColColumn, cfgColPrompt, cfgColModel, cfgColReplace, cfgColSearch, cfgColActive)
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

func TestParseConfigTable(t *testing.T) {
	tbl := configTable(
		map[string]string{
			cfgColColumn: "summary", cfgColPrompt: "Summarize {{ name }}",
			cfgColReplace: "TRUE", cfgColSearch: "yes", cfgColActive: "1",
		},
		map[string]string{
			cfgColColumn: "", cfgColPrompt: "orphan prompt", cfgColActive: "TRUE",
		},
		map[string]string{
			cfgColColumn: "notes", cfgColPrompt: "   ", cfgColActive: "TRUE",
		},
		map[string]string{
			cfgColColumn: "facts", cfgColPrompt: "Find facts", cfgColModel: "gemini-2.5-pro",
			cfgColReplace: "nope", cfgColActive: "false",
		},
	)

	configs := ParseConfigTable(tbl)
	if len(configs) != 2 {
		t.Fatalf("got %d configs, want 2 (incomplete rows dropped)", len(configs))
	}
	first := configs[0]
	if first.ColumnName != "summary" || !first.ReplaceMode || !first.WebSearch || !first.IsActive {
		t.Errorf("first config parsed wrong: %+v", first)
	}
	second := configs[1]
	if second.Model != "gemini-2.5-pro" || second.ReplaceMode || second.IsActive {
		t.Errorf("second config parsed wrong: %+v", second)
	}
}

func TestConfigsRoundTrip(t *testing.T) {
	in := []PromptConfig{
		{ColumnName: "a", PromptText: "do {{ x }}", ReplaceMode: true, IsActive: true},
		{ColumnName: "b", PromptText: "find", WebSearch: true},
	}
	out := ParseConfigTable(ConfigsToTable(in))
	if len(out) != len(in) {
		t.Fatalf("got %d configs, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("config %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestBuildJobsRendersPerRow(t *testing.T) {
	data := table.New("company", "summary")
	data.AppendRow(map[string]string{"company": "Acme"})
	data.AppendRow(map[string]string{"company": "Globex"})

	jobs := BuildJobs(data, []PromptConfig{{
		ColumnName: "summary",
		PromptText: "Describe {{ company }}",
		WebSearch:  true,
		IsActive:   true,
	}})

	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].Prompt != "Describe Acme" || jobs[1].Prompt != "Describe Globex" {
		t.Errorf("rendered prompts wrong: %q, %q", jobs[0].Prompt, jobs[1].Prompt)
	}
	if !jobs[0].NeedsSearch || jobs[0].ColumnName != "summary" {
		t.Errorf("job metadata wrong: %+v", jobs[0])
	}
}

func TestBuildJobsSkipRules(t *testing.T) {
	data := table.New("company", "summary")
	data.AppendRow(map[string]string{"company": "Acme", "summary": "already done"})
	data.AppendRow(map[string]string{"company": "Globex", "summary": "  "})

	cfg := PromptConfig{ColumnName: "summary", PromptText: "Describe {{ company }}", IsActive: true}

	jobs := BuildJobs(data, []PromptConfig{cfg})
	if len(jobs) != 1 || jobs[0].RowIndex != 1 {
		t.Fatalf("without replace mode, want only the blank row; got %+v", jobs)
	}

	cfg.ReplaceMode = true
	jobs = BuildJobs(data, []PromptConfig{cfg})
	if len(jobs) != 2 {
		t.Fatalf("with replace mode, want filled+blank rows; got %d jobs", len(jobs))
	}
}

func TestBuildJobsLockedPromptText(t *testing.T) {
	data := table.New("company", "analysis")
	data.AppendRow(map[string]string{"company": "Acme"})
	data.AppendRow(map[string]string{"company": "Globex"})

	// A freshly added column's config defaults to the locked prompt; it must
	// never reach the model, active or not, replace mode or not.
	for _, cfg := range []PromptConfig{
		{ColumnName: "analysis", PromptText: "LOCKED", IsActive: true},
		{ColumnName: "analysis", PromptText: "  LOCKED  ", IsActive: true, ReplaceMode: true},
	} {
		if jobs := BuildJobs(data, []PromptConfig{cfg}); len(jobs) != 0 {
			t.Errorf("locked prompt produced %d jobs for config %+v", len(jobs), cfg)
		}
	}
}

func TestBuildJobsInactiveConfig(t *testing.T) {
	data := table.New("company", "summary")
	data.AppendRow(map[string]string{"company": "Acme"})

	jobs := BuildJobs(data, []PromptConfig{{
		ColumnName: "summary", PromptText: "Describe {{ company }}",
	}})
	if len(jobs) != 0 {
		t.Errorf("inactive config produced %d jobs", len(jobs))
	}
}

func TestBuildJobsIdempotentAfterApply(t *testing.T) {
	data := table.New("company", "summary")
	data.AppendRow(map[string]string{"company": "Acme"})
	cfg := PromptConfig{ColumnName: "summary", PromptText: "Describe {{ company }}", IsActive: true}

	jobs := BuildJobs(data, []PromptConfig{cfg})
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	ApplyResults(data, []PromptResult{{RowIndex: 0, ColumnName: "summary", Text: "filled"}})

	if again := BuildJobs(data, []PromptConfig{cfg}); len(again) != 0 {
		t.Errorf("re-run produced %d jobs after results were applied", len(again))
	}
}
