package models

import (
	"time"
)

// User represents an authenticated user of the dashboard.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MagicLinkToken is a single-use login token sent to a user by email.
// Only the bcrypt hash of the token is stored.
type MagicLinkToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	TokenHash string     `db:"token_hash" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Merchant is a tenant/business entity that owns transaction data.
type Merchant struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	Website     string    `db:"website" json:"website"`
	Status      string    `db:"status" json:"status"` // active | inactive
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserMerchant grants a user role-scoped access to one merchant.
type UserMerchant struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	MerchantID string    `db:"merchant_id" json:"merchant_id"`
	Role       string    `db:"role" json:"role"` // admin | manager | viewer
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Merchant   *Merchant `db:"-" json:"merchant,omitempty"`
}

// PromptHistoryItem records one prompt submission attempt and its outcome.
// Owned by the local cache, mirrored best-effort to Postgres.
type PromptHistoryItem struct {
	ID            string    `db:"id" json:"id"`
	Prompt        string    `db:"prompt" json:"prompt"`
	SQLQuery      string    `db:"sql_query" json:"sqlQuery,omitempty"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
	ExecutionTime int64     `db:"execution_time" json:"executionTime,omitempty"` // milliseconds
	Status        string    `db:"status" json:"status"`                          // success | error | pending
	ResultCount   int       `db:"result_count" json:"resultCount,omitempty"`
	ChartTypes    []string  `db:"chart_types" json:"chartTypes"`
	IsFavorite    bool      `db:"is_favorite" json:"isFavorite"`
	Tags          []string  `db:"tags" json:"tags"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// HistoryUpdate carries the mutable fields of a history item. Nil means
// "leave unchanged".
type HistoryUpdate struct {
	IsFavorite    *bool     `json:"isFavorite,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	Status        *string   `json:"status,omitempty"`
	ExecutionTime *int64    `json:"executionTime,omitempty"`
	ResultCount   *int      `json:"resultCount,omitempty"`
}

// HistoryFilters narrows a history listing.
type HistoryFilters struct {
	Search    string
	Status    []string
	Favorites bool
	Tags      []string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// QueryResult is the tabular outcome of one executed query. Transient;
// only summary fields survive into history.
type QueryResult struct {
	Data          []map[string]any `json:"data"`
	Columns       []string         `json:"columns"`
	RowCount      int              `json:"rowCount"`
	ExecutionTime int64            `json:"executionTime"` // milliseconds
}

// ChartConfig is a declarative chart description for the presentation
// layer. Derived per query, never persisted.
type ChartConfig struct {
	Type    string `json:"type"` // line | bar | area | pie | scatter
	XAxis   string `json:"xAxis,omitempty"`
	YAxis   string `json:"yAxis,omitempty"`
	DataKey string `json:"dataKey,omitempty"`
	Title   string `json:"title,omitempty"`
}

// QueryGeneration is the synthesized plan for a free-text prompt.
type QueryGeneration struct {
	SQLQuery            string        `json:"sqlQuery"`
	Explanation         string        `json:"explanation"`
	EstimatedComplexity string        `json:"estimatedComplexity"` // low | medium | high
	SuggestedCharts     []ChartConfig `json:"suggestedCharts"`
}

// Transaction is one row of the payment event feed. Status and
// ErrorCategory are derived view annotations, never written back.
type Transaction struct {
	TransactionID    string     `db:"transaction_id" json:"transaction_id"`
	EventIndex       string     `db:"event_index" json:"event_index"`
	EventType        string     `db:"event_type" json:"event_type"`
	Time             *time.Time `db:"time" json:"time"`
	SessionStartTime *time.Time `db:"session_start_time" json:"session_start_time"`

	MerchantID       string `db:"merchant_id" json:"merchant_id"`
	MerchantName     string `db:"merchant_name" json:"merchant_name"`
	MerchantCategory string `db:"merchant_category" json:"merchant_category"`

	TotalAmount         float64 `db:"total_amount" json:"total_amount"`
	PaymentAmount       string  `db:"payment_amount" json:"payment_amount"`
	Currency            string  `db:"currency" json:"currency"`
	PISPaymentReference string  `db:"pis_payment_reference" json:"pis_payment_reference"`

	UserID       string `db:"user_id" json:"user_id"`
	UserLocation string `db:"user_location" json:"user_location"`

	Browser         string `db:"browser" json:"browser"`
	DeviceType      string `db:"device_type" json:"device_type"`
	Language        string `db:"language" json:"language"`
	IsGuestMode     bool   `db:"is_guest_mode" json:"is_guest_mode"`
	IsReturningUser bool   `db:"is_returning_user" json:"is_returning_user"`
	IsExpress       bool   `db:"is_express" json:"is_express"`

	EventFailureMessage        string `db:"event_failure_message" json:"event_failure_message"`
	CheckoutSessionAbortReason string `db:"checkout_session_abort_reason" json:"checkout_session_abort_reason"`

	Status        string `db:"-" json:"status,omitempty"`        // success | failed | pending
	ErrorCategory string `db:"-" json:"errorCategory,omitempty"` // see transactions.Category
}

// TransactionStats aggregates one page of the feed plus the exact total.
type TransactionStats struct {
	Total            int            `json:"total"`
	Successful       int            `json:"successful"`
	Failed           int            `json:"failed"`
	Pending          int            `json:"pending"`
	SuccessRate      float64        `json:"successRate"`
	AvgAmount        float64        `json:"avgAmount"`
	TotalVolume      float64        `json:"totalVolume"`
	ErrorsByCategory map[string]int `json:"errorsByCategory"`
	ByDeviceType     map[string]int `json:"byDeviceType"`
	ByCurrency       map[string]int `json:"byCurrency"`
}

// Pagination describes one page of the transaction feed.
type Pagination struct {
	CurrentPage       int  `json:"currentPage"`
	TotalPages        int  `json:"totalPages"`
	TotalTransactions int  `json:"totalTransactions"`
	ItemsPerPage      int  `json:"itemsPerPage"`
	HasMore           bool `json:"hasMore"`
	HasPrevious       bool `json:"hasPrevious"`
}

// ResolutionStep is one step of a canned resolution guide.
type ResolutionStep struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
}

// Solution is the parsed output of the dynamic resolution-guide call.
type Solution struct {
	Explanation string   `json:"explanation"`
	Fixes       []string `json:"fixes"`
}
