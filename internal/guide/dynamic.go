package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/models"
)

// ErrMissingErrorMessage is returned when there is nothing to explain.
var ErrMissingErrorMessage = errors.New("missing errorMessage")

const solutionPromptFormat = `Du bist ein Hilfsassistent für Entwickler.
Erkläre die folgende Fehlermeldung in einfacher Sprache in genau einem vollständigen Satz (länger als fünf Wörter) und nenne anschließend drei gängige Lösungsansätze oder Best Practices als Liste.
Gib ausschließlich JSON zurück im Format:
{"explanation":"…","fixes":["…","…","…"]}

Fehlermeldung:
%s
`

// Generator produces a plain-language explanation plus exactly three fix
// suggestions for a failure message, via the text-generation collaborator.
type Generator struct {
	llm core.LLMProvider
}

func NewGenerator(llm core.LLMProvider) *Generator {
	return &Generator{llm: llm}
}

// GenerateSolution asks the LLM for a strict-JSON explanation of the
// failure message. A response that is not valid JSON of the expected
// shape is an upstream error; there is no fallback to the static guide.
func (g *Generator) GenerateSolution(ctx context.Context, errorMessage string) (*models.Solution, error) {
	if strings.TrimSpace(errorMessage) == "" {
		return nil, ErrMissingErrorMessage
	}

	raw, err := g.llm.Generate(ctx, "", fmt.Sprintf(solutionPromptFormat, errorMessage))
	if err != nil {
		return nil, fmt.Errorf("generating solution: %w", err)
	}

	var solution models.Solution
	if err := json.Unmarshal([]byte(stripFences(raw)), &solution); err != nil {
		return nil, fmt.Errorf("parsing solution response: %w", err)
	}
	if solution.Explanation == "" || len(solution.Fixes) != 3 {
		return nil, fmt.Errorf("solution response has unexpected shape")
	}
	return &solution, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add despite the JSON-only instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
