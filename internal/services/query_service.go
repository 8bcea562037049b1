package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoellers/insightdeck/internal/models"
	"github.com/jmoellers/insightdeck/internal/queryplan"
)

var (
	ErrMissingSQL     = errors.New("SQL query is required")
	ErrDangerousQuery = errors.New("Query contains potentially dangerous operations")
)

// dangerousPatterns blocks every mutating statement. The executor only
// ever serves read-style analytics, so a substring check is enough.
var dangerousPatterns = []string{"drop", "delete", "truncate", "alter", "create", "insert", "update"}

// QueryService synthesizes SQL plans for free-text prompts and executes
// them against a simulated warehouse.
type QueryService struct{}

func NewQueryService() *QueryService {
	return &QueryService{}
}

// Generate turns a free-text prompt into a SQL plan with explanation and
// suggested charts.
func (s *QueryService) Generate(ctx context.Context, prompt string) (*models.QueryGeneration, error) {
	return queryplan.GenerateFromPrompt(prompt)
}

// Execute validates the query against the denylist and synthesizes a
// result set whose shape matches the query's subject.
func (s *QueryService) Execute(ctx context.Context, sqlQuery string) (*models.QueryResult, error) {
	if sqlQuery == "" {
		return nil, ErrMissingSQL
	}

	normalized := strings.ToLower(sqlQuery)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(normalized, pattern) {
			return nil, ErrDangerousQuery
		}
	}

	start := time.Now()
	data, columns := sampleRows(normalized)
	elapsed := time.Since(start).Milliseconds()

	return &models.QueryResult{
		Data:          data,
		Columns:       columns,
		RowCount:      len(data),
		ExecutionTime: elapsed,
	}, nil
}

// sampleRows fabricates a result set for the recognized query subject.
// Values are derived from the row index so repeated runs return the
// same numbers.
func sampleRows(normalizedQuery string) ([]map[string]any, []string) {
	switch {
	case strings.Contains(normalizedQuery, "orders") && strings.Contains(normalizedQuery, "month"):
		columns := []string{"month", "total_revenue", "order_count"}
		months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}
		data := make([]map[string]any, len(months))
		for i, month := range months {
			data[i] = map[string]any{
				"month":         month,
				"total_revenue": 20000 + vary(i, 50000),
				"order_count":   100 + vary(i, 200),
			}
		}
		return data, columns

	case strings.Contains(normalizedQuery, "products") && strings.Contains(normalizedQuery, "category"):
		columns := []string{"category", "product_count", "avg_price", "total_sales"}
		categories := []string{"Elektronik", "Kleidung", "Bücher", "Sport", "Haus & Garten", "Spielwaren"}
		data := make([]map[string]any, len(categories))
		for i, category := range categories {
			data[i] = map[string]any{
				"category":      category,
				"product_count": 50 + vary(i, 500),
				"avg_price":     25 + vary(i, 200),
				"total_sales":   1000 + vary(i, 10000),
			}
		}
		return data, columns

	case strings.Contains(normalizedQuery, "regions") && strings.Contains(normalizedQuery, "customers"):
		columns := []string{"region_name", "customer_count", "total_revenue", "avg_order_value"}
		regions := []string{"Nord", "Süd", "Ost", "West", "Zentral"}
		data := make([]map[string]any, len(regions))
		for i, region := range regions {
			data[i] = map[string]any{
				"region_name":     region,
				"customer_count":  200 + vary(i, 1000),
				"total_revenue":   30000 + vary(i, 100000),
				"avg_order_value": 50 + vary(i, 150),
			}
		}
		return data, columns

	case strings.Contains(normalizedQuery, "date") && strings.Contains(normalizedQuery, "daily"):
		columns := []string{"date", "daily_orders", "daily_revenue", "avg_order_value", "prev_day_orders"}
		start := time.Now().AddDate(0, 0, -30)
		data := make([]map[string]any, 30)
		for i := range data {
			dailyOrders := 20 + vary(i, 50)
			row := map[string]any{
				"date":            start.AddDate(0, 0, i).Format("2006-01-02"),
				"daily_orders":    dailyOrders,
				"daily_revenue":   dailyOrders * (50 + vary(i, 100)),
				"avg_order_value": 40 + vary(i, 80),
			}
			if i > 0 {
				row["prev_day_orders"] = data[i-1]["daily_orders"]
			} else {
				row["prev_day_orders"] = nil
			}
			data[i] = row
		}
		return data, columns

	default:
		columns := []string{"metric", "count", "average_value"}
		metrics := []string{"Verkäufe", "Besucher", "Conversions", "Returns", "Reviews"}
		data := make([]map[string]any, len(metrics))
		for i, metric := range metrics {
			data[i] = map[string]any{
				"metric":        metric,
				"count":         100 + vary(i, 1000),
				"average_value": 50 + vary(i, 500),
			}
		}
		return data, columns
	}
}

// vary spreads row values across [0, span) without pulling in math/rand,
// so identical queries always get identical results.
func vary(i, span int) int {
	return (i*7919 + 104729) % span
}
