package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoellers/insightdeck/internal/guide"
)

type cannedLLM struct {
	response string
	err      error
}

func (c *cannedLLM) Generate(context.Context, string, string) (string, error) {
	return c.response, c.err
}

func TestGenerateSolution(t *testing.T) {
	llm := &cannedLLM{response: `{"explanation":"Die Verbindung zum Zahlungsdienst wurde unterbrochen.","fixes":["Netzwerk prüfen","Timeout erhöhen","Retry einbauen"]}`}
	h := NewSolutionHandler(guide.NewGenerator(llm), testLog())

	rec := postJSON(t, h.GenerateSolution, `{"errorMessage":"Network timeout occurred"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Zahlungsdienst")
	assert.Contains(t, rec.Body.String(), "Retry einbauen")
}

func TestGenerateSolution_MissingErrorMessage(t *testing.T) {
	h := NewSolutionHandler(guide.NewGenerator(&cannedLLM{}), testLog())

	for _, body := range []string{`{}`, `{"errorMessage":""}`, `garbage`} {
		rec := postJSON(t, h.GenerateSolution, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Missing errorMessage"}`, rec.Body.String(), body)
	}
}

func TestGenerateSolution_UpstreamFailure(t *testing.T) {
	h := NewSolutionHandler(guide.NewGenerator(&cannedLLM{err: assert.AnError}), testLog())

	rec := postJSON(t, h.GenerateSolution, `{"errorMessage":"boom"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"API-Fehler"}`, rec.Body.String())
}

func TestGenerateSolution_MalformedModelOutput(t *testing.T) {
	h := NewSolutionHandler(guide.NewGenerator(&cannedLLM{response: "not json at all"}), testLog())

	rec := postJSON(t, h.GenerateSolution, `{"errorMessage":"boom"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
