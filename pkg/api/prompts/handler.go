// Package prompts provides the one-off prompt execution endpoint, mainly for
// trying a template out before wiring it into the configuration sheet.
package prompts

import (
	"encoding/json"
	"net/http"

	"promptsheet/pkg/core/batch"
	"promptsheet/pkg/core/prompt"
)

type SingleRequest struct {
	// Template is the prompt text, with {{ column }} placeholders.
	// TemplateID selects a library template instead; Template wins when both
	// are set.
	Template   string `json:"template"`
	TemplateID string `json:"template_id"`
	// Values substitutes the placeholders, standing in for one table row.
	Values    map[string]string `json:"values"`
	Model     string            `json:"model,omitempty"`
	WebSearch bool              `json:"web_search"`
}

type SingleResponse struct {
	Prompt string             `json:"prompt"`
	Result batch.PromptResult `json:"result"`
}

// Handler holds dependencies for prompt endpoints.
type Handler struct {
	Caller batch.Caller
}

func NewHandler(caller batch.Caller) *Handler {
	return &Handler{Caller: caller}
}

// HandleSingle renders the template against the given values and executes it
// as a one-job batch. Call failures come back normalized in the result, with
// a 200: the request itself succeeded.
func (h *Handler) HandleSingle(w http.ResponseWriter, r *http.Request) {
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

	var req SingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	text := req.Template
	webSearch := req.WebSearch
	if text == "" && req.TemplateID != "" {
		pt, err := prompt.Get().GetPrompt(req.TemplateID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		text = pt.Text
		webSearch = webSearch || pt.WebSearch
	}
	if text == "" {
		http.Error(w, "Missing template", http.StatusBadRequest)
		return
	}

	rendered := prompt.Render(text, req.Values)
	result := batch.ExecuteSingle(r.Context(), h.Caller, batch.PromptJob{
		ColumnName:  "single",
		Prompt:      rendered,
		Model:       req.Model,
		NeedsSearch: webSearch,
	})

	json.NewEncoder(w).Encode(SingleResponse{Prompt: rendered, Result: result})
}

// HandleLibrary lists the loaded prompt library's template IDs.
func (h *Handler) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   prompt.Get().Count(),
		"prompts": prompt.Get().ListPrompts(),
	})
}
