package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/guide"
)

type SolutionHandler struct {
	generator *guide.Generator
	log       *logrus.Entry
}

func NewSolutionHandler(generator *guide.Generator, log *logrus.Entry) *SolutionHandler {
	return &SolutionHandler{generator: generator, log: log}
}

type solutionRequest struct {
	ErrorMessage string `json:"errorMessage"`
}

func (h *SolutionHandler) GenerateSolution(w http.ResponseWriter, r *http.Request) {
	var req solutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing errorMessage")
		return
	}

	solution, err := h.generator.GenerateSolution(r.Context(), req.ErrorMessage)
	if err != nil {
		if errors.Is(err, guide.ErrMissingErrorMessage) {
			writeError(w, http.StatusBadRequest, "Missing errorMessage")
			return
		}
		h.log.WithError(err).Error("solution generation failed")
		writeError(w, http.StatusInternalServerError, "API-Fehler")
		return
	}
	writeJSON(w, http.StatusOK, solution)
}
