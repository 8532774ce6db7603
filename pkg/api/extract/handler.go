// Package extract serves the per-tag extraction views, as JSON grids or
// rendered HTML.
package extract

import (
	"encoding/json"
	"net/http"

	"promptsheet/pkg/core/session"
	"promptsheet/pkg/core/sources"
	"promptsheet/pkg/core/utils"
)

type Response struct {
	Tag       string             `json:"tag"`
	Columns   []string           `json:"columns"`
	Rows      [][]string         `json:"rows"`
	Citations []sources.Citation `json:"citations,omitempty"`
}

// Handler holds dependencies for extraction endpoints.
type Handler struct {
	App      *session.App
	Enricher *sources.Enricher
}

func NewHandler(app *session.App, enricher *sources.Enricher) *Handler {
	return &Handler{App: app, Enricher: enricher}
}

// HandleExtract serves GET /api/extract?tag=answer[&render=html]. The HTML
// mode renders each extracted cell's markdown; the sources tag additionally
// gets its cited links parsed and title-enriched.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	tag := r.URL.Query().Get("tag")
	if tag == "" {
		tag = "answer"
	}

	view, err := h.App.Extraction(tag)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	grid := view.ToGrid()
	resp := Response{Tag: tag, Columns: grid[0]}
	if len(grid) > 1 {
		resp.Rows = grid[1:]
	}

	// Citations are parsed from the raw markdown, before any HTML rendering
	// destroys the link syntax.
	if tag == "sources" && h.Enricher != nil {
		var all []sources.Citation
		for _, row := range resp.Rows {
			for _, cell := range row {
				all = append(all, sources.ParseCitations(cell)...)
			}
		}
		resp.Citations = h.Enricher.Enrich(r.Context(), all)
	}

	if r.URL.Query().Get("render") == "html" {
		for i, row := range resp.Rows {
			for j, cell := range row {
				if cell == "" {
					continue
				}
				if html, err := utils.RenderMarkdown(cell); err == nil {
					resp.Rows[i][j] = html
				}
			}
		}
	}

	json.NewEncoder(w).Encode(resp)
}
