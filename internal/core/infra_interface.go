package core

import (
	"context"

	"github.com/jmoellers/insightdeck/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateMagicLinkToken(ctx context.Context, token *models.MagicLinkToken) error
	GetActiveMagicLinkTokens(ctx context.Context, userID string) ([]models.MagicLinkToken, error)
	MarkMagicLinkTokenUsed(ctx context.Context, id string) error

	ListMerchants(ctx context.Context) ([]models.Merchant, error)
	ListUserMerchants(ctx context.Context, userID string) ([]models.UserMerchant, error)

	CreatePromptHistory(ctx context.Context, item *models.PromptHistoryItem) error
	GetPromptHistory(ctx context.Context, filters models.HistoryFilters) ([]models.PromptHistoryItem, error)
	UpdatePromptHistory(ctx context.Context, id string, update models.HistoryUpdate) (*models.PromptHistoryItem, error)
	DeletePromptHistory(ctx context.Context, id string) error
	DeleteAllPromptHistory(ctx context.Context) error

	ListTransactions(ctx context.Context, merchantID, search string, limit, offset int) ([]models.Transaction, int, error)
	GetTransactionByID(ctx context.Context, merchantID, transactionID string) (*models.Transaction, error)
}

// LLMProvider generates free text from a system and user prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// WorkflowRunner builds and executes data-retrieval workflows on the
// external workflow service from a natural-language instruction.
type WorkflowRunner interface {
	Run(ctx context.Context, instruction string) (*WorkflowOutcome, error)
}

// WorkflowOutcome is the normalized result of one workflow execution.
// The collaborator's response shapes are duck-typed; Kind tells which
// shape was recognized.
type WorkflowOutcome struct {
	Kind            WorkflowResultKind
	Query           string
	Data            []map[string]any
	Columns         []string
	DataTypes       []string
	RowCount        int
	ExecutionTime   int64 // collaborator-reported, milliseconds
	SuggestedCharts []string
	ChartConfig     map[string]any
	ErrorMessage    string
}

// WorkflowResultKind tags the recognized response shape.
type WorkflowResultKind int

const (
	WorkflowStructured WorkflowResultKind = iota // full schema: data + metadata + visualization
	WorkflowRawRows                              // bare array of rows
	WorkflowScalar                               // single non-array value
	WorkflowEmpty                                // success with no data
	WorkflowFailed                               // collaborator reported failure
)
