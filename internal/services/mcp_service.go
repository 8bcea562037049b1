package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/models"
	"github.com/jmoellers/insightdeck/internal/queryplan"
)

// MCPMetadata summarizes one collaborator-backed query execution. The
// execution time is measured locally; row/column info is passed through
// from the collaborator when it reports any.
type MCPMetadata struct {
	RowCount      int      `json:"rowCount"`
	Columns       []string `json:"columns"`
	DataTypes     []string `json:"dataTypes"`
	ExecutionTime int64    `json:"executionTime"`
}

// MCPVisualization carries the collaborator's chart hints plus concrete
// chart configs derived from the result columns.
type MCPVisualization struct {
	SuggestedCharts []string             `json:"suggestedCharts"`
	ChartConfig     map[string]any       `json:"chartConfig"`
	Charts          []models.ChartConfig `json:"charts"`
}

// MCPQueryResponse is the live-query payload returned to the dashboard.
type MCPQueryResponse struct {
	Prompt        string           `json:"prompt"`
	Query         string           `json:"query,omitempty"`
	Data          []map[string]any `json:"data"`
	Metadata      MCPMetadata      `json:"metadata"`
	Visualization MCPVisualization `json:"visualization"`
}

// WorkflowError marks a failure the collaborator itself reported, as
// opposed to transport or configuration problems.
type WorkflowError struct {
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("Workflow execution failed: %s", e.Message)
}

// MCPService runs free-text prompts against live data through the
// external workflow collaborator.
type MCPService struct {
	runner core.WorkflowRunner
}

func NewMCPService(runner core.WorkflowRunner) *MCPService {
	return &MCPService{runner: runner}
}

// Query executes the prompt and shapes the outcome for the dashboard.
// Every recognized outcome gets sensible fallbacks so the frontend can
// always render something.
func (s *MCPService) Query(ctx context.Context, prompt string) (*MCPQueryResponse, error) {
	start := time.Now()
	outcome, err := s.runner.Run(ctx, prompt)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	if outcome.Kind == core.WorkflowFailed {
		return nil, &WorkflowError{Message: outcome.ErrorMessage}
	}

	resp := &MCPQueryResponse{
		Prompt: prompt,
		Query:  outcome.Query,
		Data:   outcome.Data,
		Metadata: MCPMetadata{
			RowCount:      outcome.RowCount,
			Columns:       outcome.Columns,
			DataTypes:     outcome.DataTypes,
			ExecutionTime: elapsed,
		},
		Visualization: MCPVisualization{
			SuggestedCharts: outcome.SuggestedCharts,
			ChartConfig:     outcome.ChartConfig,
		},
	}

	switch outcome.Kind {
	case core.WorkflowStructured:
		if resp.Query == "" {
			resp.Query = "Generated SQL query"
		}
		// Prefer the collaborator's own measurement when it reports one.
		if outcome.ExecutionTime > 0 {
			resp.Metadata.ExecutionTime = outcome.ExecutionTime
		}
		resp.Visualization.Charts = queryplan.ChartsForResult(outcome.SuggestedCharts, &models.QueryResult{
			Data:    outcome.Data,
			Columns: outcome.Columns,
		})
	case core.WorkflowRawRows, core.WorkflowScalar:
		if resp.Query == "" {
			resp.Query = "Generated SQL query (parsing failed)"
		}
		resp.Metadata.DataTypes = stringTypes(len(resp.Metadata.Columns))
		resp.Visualization = MCPVisualization{
			SuggestedCharts: []string{"table"},
			ChartConfig:     map[string]any{"type": "table"},
		}
	case core.WorkflowEmpty:
		resp.Data = []map[string]any{{"message": "No data available"}}
		resp.Metadata = MCPMetadata{
			RowCount:      1,
			Columns:       []string{"message"},
			DataTypes:     []string{"text"},
			ExecutionTime: elapsed,
		}
		resp.Visualization = MCPVisualization{
			SuggestedCharts: []string{"text"},
			ChartConfig:     map[string]any{"type": "text"},
		}
	}

	if resp.Data == nil {
		resp.Data = []map[string]any{}
	}
	if resp.Metadata.Columns == nil {
		resp.Metadata.Columns = []string{}
	}
	if resp.Metadata.DataTypes == nil {
		resp.Metadata.DataTypes = []string{}
	}
	if len(resp.Visualization.SuggestedCharts) == 0 {
		resp.Visualization.SuggestedCharts = []string{"table"}
	}
	if resp.Visualization.ChartConfig == nil {
		resp.Visualization.ChartConfig = map[string]any{}
	}
	if resp.Visualization.Charts == nil {
		resp.Visualization.Charts = []models.ChartConfig{}
	}
	return resp, nil
}

func stringTypes(n int) []string {
	if n == 0 {
		return []string{"text"}
	}
	types := make([]string, n)
	for i := range types {
		types[i] = "string"
	}
	return types
}
