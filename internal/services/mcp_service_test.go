package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoellers/insightdeck/internal/core"
)

type fakeRunner struct {
	outcome *core.WorkflowOutcome
	err     error
}

func (f *fakeRunner) Run(_ context.Context, _ string) (*core.WorkflowOutcome, error) {
	return f.outcome, f.err
}

func TestQuery_StructuredOutcome(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{
		Kind:            core.WorkflowStructured,
		Query:           "SELECT merchant_name, SUM(total_amount) FROM basic_paying_flow GROUP BY 1",
		Data:            []map[string]any{{"merchant_name": "A", "sum": 10.5}},
		Columns:         []string{"merchant_name", "sum"},
		DataTypes:       []string{"text", "number"},
		RowCount:        1,
		SuggestedCharts: []string{"bar"},
		ChartConfig:     map[string]any{"type": "bar"},
	}})

	resp, err := svc.Query(context.Background(), "revenue per merchant")
	require.NoError(t, err)

	assert.Equal(t, "revenue per merchant", resp.Prompt)
	assert.Contains(t, resp.Query, "SELECT merchant_name")
	assert.Equal(t, 1, resp.Metadata.RowCount)
	assert.Equal(t, []string{"bar"}, resp.Visualization.SuggestedCharts)
	assert.GreaterOrEqual(t, resp.Metadata.ExecutionTime, int64(0), "execution time is measured locally")

	require.Len(t, resp.Visualization.Charts, 1)
	assert.Equal(t, "bar", resp.Visualization.Charts[0].Type)
	assert.Equal(t, "merchant_name", resp.Visualization.Charts[0].XAxis)
	assert.Equal(t, "sum", resp.Visualization.Charts[0].YAxis)
}

func TestQuery_StructuredDerivesChartBindings(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{
		Kind:     core.WorkflowStructured,
		Data:     []map[string]any{{"month": "2024-01", "revenue": 12000.5}},
		Columns:  []string{"month", "revenue"},
		RowCount: 1,
	}})

	resp, err := svc.Query(context.Background(), "p")
	require.NoError(t, err)

	require.Len(t, resp.Visualization.Charts, 1)
	chart := resp.Visualization.Charts[0]
	assert.Equal(t, "bar", chart.Type)
	assert.Equal(t, "month", chart.XAxis)
	assert.Equal(t, "revenue", chart.YAxis, "y axis binds to the numeric column")
}

func TestQuery_StructuredWithoutChartsFallsBackToTable(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{
		Kind:     core.WorkflowStructured,
		Data:     []map[string]any{{"v": 1}},
		Columns:  []string{"v"},
		RowCount: 1,
	}})

	resp, err := svc.Query(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Generated SQL query", resp.Query)
	assert.Equal(t, []string{"table"}, resp.Visualization.SuggestedCharts)
	assert.NotNil(t, resp.Visualization.ChartConfig)
	assert.Empty(t, resp.Visualization.Charts, "single column yields no chart bindings")
	assert.NotNil(t, resp.Visualization.Charts)
}

func TestQuery_StructuredPrefersCollaboratorExecutionTime(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{
		Kind:          core.WorkflowStructured,
		Data:          []map[string]any{{"v": 1}},
		Columns:       []string{"v"},
		RowCount:      1,
		ExecutionTime: 4321,
	}})

	resp, err := svc.Query(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, int64(4321), resp.Metadata.ExecutionTime)
}

func TestQuery_RawRowsOutcome(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{
		Kind:     core.WorkflowRawRows,
		Data:     []map[string]any{{"a": 1, "b": "x"}},
		Columns:  []string{"a", "b"},
		RowCount: 1,
	}})

	resp, err := svc.Query(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Generated SQL query (parsing failed)", resp.Query)
	assert.Equal(t, []string{"string", "string"}, resp.Metadata.DataTypes)
	assert.Equal(t, map[string]any{"type": "table"}, resp.Visualization.ChartConfig)
}

func TestQuery_EmptyOutcome(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{Kind: core.WorkflowEmpty}})

	resp, err := svc.Query(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"message": "No data available"}}, resp.Data)
	assert.Equal(t, []string{"message"}, resp.Metadata.Columns)
	assert.Equal(t, []string{"text"}, resp.Visualization.SuggestedCharts)
}

func TestQuery_CollaboratorFailure(t *testing.T) {
	svc := NewMCPService(&fakeRunner{outcome: &core.WorkflowOutcome{
		Kind:         core.WorkflowFailed,
		ErrorMessage: "integration offline",
	}})

	_, err := svc.Query(context.Background(), "p")
	var wfErr *WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, "Workflow execution failed: integration offline", wfErr.Error())
}

func TestQuery_TransportErrorPassesThrough(t *testing.T) {
	svc := NewMCPService(&fakeRunner{err: assert.AnError})
	_, err := svc.Query(context.Background(), "p")
	assert.ErrorIs(t, err, assert.AnError)
}
