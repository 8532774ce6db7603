// Package run provides HTTP handlers that execute prompt batches against the
// current session, in one shot or with streamed progress.
package run

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"promptsheet/pkg/core/session"
)

// ProgressEvent is a single SSE progress update during a streamed run.
type ProgressEvent struct {
	Step   string `json:"step"`   // "init", "progress", "complete", "error"
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data,omitempty"` // run summary on "complete"
}

// Handler holds dependencies for run endpoints.
type Handler struct {
	App    *session.App
	Logger *zap.Logger
}

func NewHandler(app *session.App, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{App: app, Logger: logger}
}

// HandleRun executes the configured batch and returns the summary as JSON.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.App.LoadAll(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	summary := h.App.RunPrompts(r.Context(), nil)
	if err := h.App.SaveAll(r.Context()); err != nil {
		h.Logger.Error("save after run failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(summary)
}

// HandleRunStream executes the batch while streaming per-job progress as SSE
// events, ending with a "complete" event carrying the run summary.
func (h *Handler) HandleRunStream(w http.ResponseWriter, r *http.Request) {
	// SSE headers must be set before any write.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sendEvent := func(event ProgressEvent) {
		data, _ := json.Marshal(event)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	sendEvent(ProgressEvent{Step: "init", Detail: "Connection established"})

	if err := h.App.LoadAll(r.Context()); err != nil {
		sendEvent(ProgressEvent{Step: "error", Detail: err.Error()})
		return
	}

	summary := h.App.RunPrompts(r.Context(), func(done, total int) {
		sendEvent(ProgressEvent{Step: "progress", Done: done, Total: total})
	})

	if err := h.App.SaveAll(r.Context()); err != nil {
		h.Logger.Error("save after run failed", zap.Error(err))
		sendEvent(ProgressEvent{Step: "error", Detail: err.Error()})
		return
	}

	sendEvent(ProgressEvent{
		Step:  "complete",
		Done:  summary.Record.JobCount,
		Total: summary.Record.JobCount,
		Data:  summary,
	})
}
