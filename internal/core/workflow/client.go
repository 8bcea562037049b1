// Package workflow talks to the external workflow-building service that
// turns natural-language instructions into executed data-retrieval plans.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jmoellers/insightdeck/internal/core"
)

// ErrNotConfigured is returned before any network call when no API key is set.
var ErrNotConfigured = errors.New("Superglue API key not configured. Please set SUPERGLUE_API_KEY environment variable.")

// promptSuffix nudges the collaborator into a machine-readable reply.
const promptSuffix = "\n\nPlease return results in JSON format suitable for visualization."

// integrationID names the pre-configured database integration on the
// collaborator side.
const integrationID = "supabase_postgres-1"

// Client communicates with the workflow service over JSON/HTTP.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client targeting the given service endpoint.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// buildRequest is the JSON body for POST /workflows/build.
type buildRequest struct {
	Instruction    string         `json:"instruction"`
	IntegrationIDs []string       `json:"integrationIds"`
	Payload        map[string]any `json:"payload"`
	ResponseSchema map[string]any `json:"responseSchema"`
}

// executeRequest is the JSON body for POST /workflows/execute.
type executeRequest struct {
	Workflow json.RawMessage `json:"workflow"`
	Payload  map[string]any  `json:"payload"`
	Verbose  bool            `json:"verbose"`
}

// executeResponse mirrors the collaborator's execution envelope. Data is
// left raw: the shape varies and is normalized afterwards.
type executeResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Config  workflowConfig  `json:"config"`
}

type workflowConfig struct {
	Steps []workflowStep `json:"steps"`
}

type workflowStep struct {
	APIConfig stepAPIConfig `json:"apiConfig"`
}

type stepAPIConfig struct {
	Body string `json:"body"`
}

// responseSchema constrains the workflow output to the dashboard's
// visualization contract.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{"type": "string"},
		"data":  map[string]any{"type": "array"},
		"metadata": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"rowCount":      map[string]any{"type": "number"},
				"columns":       map[string]any{"type": "array"},
				"dataTypes":     map[string]any{"type": "array"},
				"executionTime": map[string]any{"type": "number"},
			},
		},
		"visualization": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"suggestedCharts": map[string]any{"type": "array"},
				"chartConfig":     map[string]any{"type": "object"},
			},
		},
	},
}

// Run builds a workflow from the instruction and executes it, returning
// the normalized outcome. Build and execution failures are wrapped with
// distinct causes so the orchestrator can log which phase broke.
func (c *Client) Run(ctx context.Context, instruction string) (*core.WorkflowOutcome, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	wf, err := c.build(ctx, instruction+promptSuffix)
	if err != nil {
		return nil, fmt.Errorf("workflow build failed: %w", err)
	}

	result, err := c.execute(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("workflow execution failed: %w", err)
	}

	return normalize(result), nil
}

func (c *Client) build(ctx context.Context, instruction string) (json.RawMessage, error) {
	body := buildRequest{
		Instruction:    instruction,
		IntegrationIDs: []string{integrationID},
		Payload:        map[string]any{},
		ResponseSchema: responseSchema,
	}

	var raw json.RawMessage
	if err := c.post(ctx, "/workflows/build", body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) execute(ctx context.Context, wf json.RawMessage) (*executeResponse, error) {
	body := executeRequest{Workflow: wf, Payload: map[string]any{}, Verbose: true}

	var result executeResponse
	if err := c.post(ctx, "/workflows/execute", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// structuredData is the fully-schematized workflow output shape.
type structuredData struct {
	Query    string           `json:"query"`
	Data     []map[string]any `json:"data"`
	Metadata struct {
		RowCount      int      `json:"rowCount"`
		Columns       []string `json:"columns"`
		DataTypes     []string `json:"dataTypes"`
		ExecutionTime int64    `json:"executionTime"`
	} `json:"metadata"`
	Visualization struct {
		SuggestedCharts []string       `json:"suggestedCharts"`
		ChartConfig     map[string]any `json:"chartConfig"`
	} `json:"visualization"`
}

// normalize turns the collaborator's duck-typed result into a tagged
// outcome. Recognized shapes, in order: reported failure, the structured
// schema, a bare row array, nothing, and finally a scalar wrapped into a
// single "result" row.
func normalize(result *executeResponse) *core.WorkflowOutcome {
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return &core.WorkflowOutcome{Kind: core.WorkflowFailed, ErrorMessage: msg}
	}

	outcome := &core.WorkflowOutcome{Query: extractQuery(result)}

	trimmed := bytes.TrimSpace(result.Data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		outcome.Kind = core.WorkflowEmpty
		return outcome
	}

	var structured structuredData
	if err := json.Unmarshal(trimmed, &structured); err == nil && structured.Data != nil {
		outcome.Kind = core.WorkflowStructured
		outcome.Data = structured.Data
		outcome.Columns = structured.Metadata.Columns
		outcome.DataTypes = structured.Metadata.DataTypes
		outcome.RowCount = structured.Metadata.RowCount
		outcome.ExecutionTime = structured.Metadata.ExecutionTime
		outcome.SuggestedCharts = structured.Visualization.SuggestedCharts
		outcome.ChartConfig = structured.Visualization.ChartConfig
		if structured.Query != "" {
			outcome.Query = structured.Query
		}
		if outcome.RowCount == 0 {
			outcome.RowCount = len(outcome.Data)
		}
		if len(outcome.Columns) == 0 {
			outcome.Columns = columnsFromRows(outcome.Data)
		}
		return outcome
	}

	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err == nil {
		outcome.Kind = core.WorkflowRawRows
		outcome.Data = rows
		outcome.RowCount = len(rows)
		outcome.Columns = columnsFromRows(rows)
		return outcome
	}

	var scalar any
	if err := json.Unmarshal(trimmed, &scalar); err == nil && scalar != nil {
		outcome.Kind = core.WorkflowScalar
		outcome.Data = []map[string]any{{"result": scalar}}
		outcome.RowCount = 1
		outcome.Columns = []string{"result"}
		return outcome
	}

	// Shape not recognized at all.
	outcome.Kind = core.WorkflowEmpty
	return outcome
}

// extractQuery recovers the SQL text from the first workflow step whose
// body looks like a SELECT. Step bodies are often JSON with a "query"
// field; a raw SQL body is used as-is.
func extractQuery(result *executeResponse) string {
	for _, step := range result.Config.Steps {
		body := step.APIConfig.Body
		if body == "" || !strings.Contains(strings.ToLower(body), "select") {
			continue
		}
		var parsed struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(body), &parsed); err == nil && parsed.Query != "" {
			return parsed.Query
		}
		return body
	}
	return ""
}

// columnsFromRows derives a stable column list from the first row.
func columnsFromRows(rows []map[string]any) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

var _ core.WorkflowRunner = (*Client)(nil)
