package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/core/workflow"
	"github.com/jmoellers/insightdeck/internal/queryplan"
	"github.com/jmoellers/insightdeck/internal/services"
)

type QueryHandler struct {
	queries *services.QueryService
	mcp     *services.MCPService
	log     *logrus.Entry
}

func NewQueryHandler(queries *services.QueryService, mcp *services.MCPService, log *logrus.Entry) *QueryHandler {
	return &QueryHandler{queries: queries, mcp: mcp, log: log}
}

type generateQueryRequest struct {
	Prompt string `json:"prompt"`
}

func (h *QueryHandler) GenerateQuery(w http.ResponseWriter, r *http.Request) {
	var req generateQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	generation, err := h.queries.Generate(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, queryplan.ErrEmptyPrompt) {
			writeError(w, http.StatusBadRequest, "Prompt is required")
			return
		}
		h.log.WithError(err).Error("Failed to generate SQL query")
		writeError(w, http.StatusInternalServerError, "Failed to generate SQL query")
		return
	}
	writeJSON(w, http.StatusOK, generation)
}

type executeQueryRequest struct {
	SQLQuery string `json:"sqlQuery"`
}

func (h *QueryHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req executeQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "SQL query is required")
		return
	}

	result, err := h.queries.Execute(r.Context(), req.SQLQuery)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingSQL):
			writeError(w, http.StatusBadRequest, "SQL query is required")
		case errors.Is(err, services.ErrDangerousQuery):
			writeError(w, http.StatusBadRequest, "Query contains potentially dangerous operations")
		default:
			h.log.WithError(err).Error("Failed to execute SQL query")
			writeError(w, http.StatusInternalServerError, "Failed to execute SQL query")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type mcpQueryRequest struct {
	Prompt  string         `json:"prompt"`
	Context map[string]any `json:"context,omitempty"`
}

func (h *QueryHandler) MCPQuery(w http.ResponseWriter, r *http.Request) {
	var req mcpQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	resp, err := h.mcp.Query(r.Context(), req.Prompt)
	if err != nil {
		var wfErr *services.WorkflowError
		switch {
		case errors.Is(err, workflow.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, err.Error())
		case errors.As(err, &wfErr):
			writeError(w, http.StatusInternalServerError, wfErr.Error())
		default:
			h.log.WithError(err).Error("MCP query failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to execute MCP query",
				"details": err.Error(),
			})
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
