// Package handler exposes the recipe search engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/facet"
	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/middleware"
)

const maxBodyBytes = 1 << 20

type SearchEngine interface {
	Search(ctx context.Context, req engine.Request) (*engine.Response, error)
}

// SearchRequest is the JSON body of POST /api/v1/search.
type SearchRequest struct {
	Ingredients   string       `json:"ingredients"`
	Keywords      string       `json:"keywords"`
	K             *int         `json:"k"`
	Type          string       `json:"type"`
	NSyms         *int         `json:"nsyms"`
	CookingRange  *facet.Range `json:"cooking_range"`
	CaloriesRange *facet.Range `json:"calories_range"`
	ServingsRange *facet.Range `json:"servings_range"`
	FullRecords   bool         `json:"full_records"`
}

type SearchResponse struct {
	Mode    string      `json:"mode"`
	Results []facet.Hit `json:"results"`
	TookMs  int64       `json:"took_ms"`
}

type Handler struct {
	engine    SearchEngine
	collector *analytics.Collector
	logger    *slog.Logger
}

// New builds the handler. collector may be nil.
func New(eng SearchEngine, collector *analytics.Collector) *Handler {
	return &Handler{
		engine:    eng,
		collector: collector,
		logger:    logger.WithComponent("search-handler"),
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var body SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, decodeMessage(err))
		return
	}

	req := engine.Request{
		Ingredients: body.Ingredients,
		Keywords:    body.Keywords,
		Synonyms:    body.NSyms,
		Mode:        body.Type,
		Filters: facet.Filters{
			CookTime: body.CookingRange,
			Calories: body.CaloriesRange,
			Servings: body.ServingsRange,
		},
		FullRecords: body.FullRecords,
	}
	if body.K != nil {
		if *body.K < 1 {
			h.writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		req.K = *body.K
	}

	resp, err := h.engine.Search(ctx, req)
	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search failed", "ingredients", body.Ingredients, "keywords", body.Keywords, "error", err)
		} else {
			log.Info("search rejected", "status", status, "error", err)
		}
		h.track(ctx, body, req, analytics.EventSearchError, "", 0, status, latencyMs)
		h.writeError(w, status, err.Error())
		return
	}

	log.Info("search completed",
		"ingredients", body.Ingredients,
		"keywords", body.Keywords,
		"mode", resp.Mode,
		"returned", len(resp.Results),
		"latency_ms", latencyMs,
	)
	eventType := analytics.EventSearch
	if len(resp.Results) == 0 {
		eventType = analytics.EventZeroResult
	}
	h.track(ctx, body, req, eventType, string(resp.Mode), len(resp.Results), http.StatusOK, latencyMs)

	h.writeJSON(w, http.StatusOK, SearchResponse{
		Mode:    string(resp.Mode),
		Results: resp.Results,
		TookMs:  latencyMs,
	})
}

func (h *Handler) track(ctx context.Context, body SearchRequest, req engine.Request, t analytics.EventType, mode string, returned, status int, latencyMs int64) {
	if h.collector == nil {
		return
	}
	if mode == "" {
		mode = body.Type
	}
	var facets []string
	if req.Filters.CookTime != nil {
		facets = append(facets, "cooking")
	}
	if req.Filters.Calories != nil {
		facets = append(facets, "calories")
	}
	if req.Filters.Servings != nil {
		facets = append(facets, "servings")
	}
	h.collector.Track(analytics.SearchEvent{
		Type:        t,
		Ingredients: body.Ingredients,
		Keywords:    body.Keywords,
		Mode:        mode,
		K:           req.K,
		Facets:      facets,
		FullRecords: req.FullRecords,
		Returned:    returned,
		Status:      status,
		LatencyMs:   latencyMs,
		Timestamp:   time.Now().UTC(),
		RequestID:   middleware.GetRequestID(ctx),
	})
}

func decodeMessage(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &maxErr):
		return fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
	default:
		return "invalid request body: " + err.Error()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
