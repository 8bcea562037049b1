package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/history"
	"github.com/jmoellers/insightdeck/internal/models"
)

// HistoryHandler exposes the prompt history. All reads and writes go
// through the local-first cache; the remote mirror stays an internal
// detail of the cache.
type HistoryHandler struct {
	cache *history.Cache
	log   *logrus.Entry
}

func NewHistoryHandler(cache *history.Cache, log *logrus.Entry) *HistoryHandler {
	return &HistoryHandler{cache: cache, log: log}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := parseHistoryFilters(r)

	if r.URL.Query().Get("categorized") == "true" {
		writeJSON(w, http.StatusOK, h.cache.Categorize(time.Now(), filters))
		return
	}
	if q := r.URL.Query().Get("suggest"); q != "" {
		writeJSON(w, http.StatusOK, map[string][]string{"suggestions": h.cache.Suggestions(q)})
		return
	}

	items := h.cache.Filter(filters)
	if filters.Offset < len(items) {
		items = items[filters.Offset:]
	} else {
		items = nil
	}
	if len(items) > filters.Limit {
		items = items[:filters.Limit]
	}
	if items == nil {
		items = []models.PromptHistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

type createHistoryRequest struct {
	Prompt        string   `json:"prompt"`
	SQLQuery      string   `json:"sqlQuery"`
	ExecutionTime int64    `json:"executionTime"`
	Status        string   `json:"status"`
	ResultCount   int      `json:"resultCount"`
	ChartTypes    []string `json:"chartTypes"`
	Tags          []string `json:"tags"`
}

func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	item, err := h.cache.AddPrompt(history.NewPromptInput{
		Prompt:        req.Prompt,
		SQLQuery:      req.SQLQuery,
		ExecutionTime: req.ExecutionTime,
		Status:        req.Status,
		ResultCount:   req.ResultCount,
		ChartTypes:    req.ChartTypes,
		Tags:          req.Tags,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to create prompt history")
		writeError(w, http.StatusInternalServerError, "Failed to create prompt history")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *HistoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update models.HistoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	item, ok := h.cache.UpdatePrompt(id, update)
	if !ok {
		writeError(w, http.StatusNotFound, "Failed to update prompt history")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.cache.DeletePrompt(id) {
		writeError(w, http.StatusNotFound, "Failed to delete prompt history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Prompt history deleted successfully"})
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.ClearHistory(); err != nil {
		h.log.WithError(err).Error("Failed to delete prompt history")
		writeError(w, http.StatusInternalServerError, "Failed to delete prompt history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All prompt history deleted successfully"})
}

func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	successRate := 0.0
	if stats.Total > 0 {
		successRate = float64(stats.Successful) / float64(stats.Total) * 100
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":       stats.Total,
		"successful":  stats.Successful,
		"favorites":   stats.Favorites,
		"successRate": successRate,
	})
}

func parseHistoryFilters(r *http.Request) models.HistoryFilters {
	q := r.URL.Query()

	filters := models.HistoryFilters{
		Search:    q.Get("search"),
		Favorites: q.Get("favorites") == "true",
	}
	if s := q.Get("status"); s != "" {
		filters.Status = strings.Split(s, ",")
	}
	if tags := q.Get("tags"); tags != "" {
		filters.Tags = strings.Split(tags, ",")
	}
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	filters.Offset, _ = strconv.Atoi(q.Get("offset"))
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return filters
}
