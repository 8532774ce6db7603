package batch

import (
	"context"
	"os"
	"strconv"
	"sync"

	"promptsheet/pkg/core/llm"
	"promptsheet/pkg/core/table"
)

// defaultMaxConcurrent bounds in-flight calls when neither the options nor
// the environment say otherwise.
const defaultMaxConcurrent = 5

// Caller is the completion dependency of the orchestrator: one logical call,
// retries included.
type Caller interface {
	Generate(ctx context.Context, prompt string, opts llm.CallOptions) (string, error)
}

// Options tunes a batch run.
type Options struct {
	// MaxConcurrent caps in-flight calls. Zero falls back to the
	// MAX_CONCURRENT_REQUESTS environment variable, then to the default.
	MaxConcurrent int
	// OnProgress, when set, is invoked after each job settles with the
	// completed count and the total. Invocations are serialized; a panicking
	// callback is swallowed so reporting can never kill a run.
	OnProgress func(done, total int)
}

func (o Options) concurrency() int {
	n := o.MaxConcurrent
	if n <= 0 {
		if env := os.Getenv("MAX_CONCURRENT_REQUESTS"); env != "" {
			if parsed, err := strconv.Atoi(env); err == nil {
				n = parsed
			}
		}
	}
	if n <= 0 {
		n = defaultMaxConcurrent
	}
	return n
}

// ExecuteBatch runs every job through the caller with bounded concurrency and
// returns results positionally aligned with the input: results[i] always
// belongs to jobs[i]. Failures are contained per job as normalized errors on
// the result; the batch itself never fails. An empty job list returns an
// empty result list without invoking anything.
func ExecuteBatch(ctx context.Context, caller Caller, jobs []PromptJob, opts Options) []PromptResult {
	// Slots are seeded with each job's identity up front, so a result knows
	// which cell it belongs to whether or not its job ever settles.
	results := make([]PromptResult, len(jobs))
	for i, job := range jobs {
		results[i] = PromptResult{RowIndex: job.RowIndex, ColumnName: job.ColumnName}
	}
	if len(jobs) == 0 {
		return results
	}

	gate := make(chan struct{}, opts.concurrency())

	var (
		wg         sync.WaitGroup
		progressMu sync.Mutex
		done       int
	)
	total := len(jobs)

	report := func() {
		if opts.OnProgress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		func() {
			defer func() { _ = recover() }()
			opts.OnProgress(done, total)
		}()
	}

	for i, job := range jobs {
		wg.Add(1)
		go func(slot int, job PromptJob) {
			defer wg.Done()
			gate <- struct{}{}
			defer func() { <-gate }()

			text, err := caller.Generate(ctx, job.Prompt, llm.CallOptions{
				Model:     job.Model,
				WebSearch: job.NeedsSearch,
			})
			if err != nil {
				results[slot].Err = llm.Normalize(err)
			} else {
				results[slot].Text = text
			}
			report()
		}(i, job)
	}
	wg.Wait()

	return results
}

// ExecuteSingle runs one job and returns its settled result.
func ExecuteSingle(ctx context.Context, caller Caller, job PromptJob) PromptResult {
	results := ExecuteBatch(ctx, caller, []PromptJob{job}, Options{MaxConcurrent: 1})
	return results[0]
}

// ApplyResults writes settled results back into the data table. Failed jobs
// leave their cells untouched; the error record travels with the result for
// the caller to surface.
func ApplyResults(data *table.Table, results []PromptResult) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		data.SetValue(r.RowIndex, r.ColumnName, r.Text)
	}
}
