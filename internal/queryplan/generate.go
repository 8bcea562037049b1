// Package queryplan maps free-text analytics prompts to SQL templates and
// derives chart configurations from query results.
package queryplan

import (
	"errors"
	"strings"

	"github.com/jmoellers/insightdeck/internal/models"
)

// ErrEmptyPrompt is returned when the prompt is missing or blank.
var ErrEmptyPrompt = errors.New("prompt is required")

// template is one canned prompt-to-SQL mapping. Keywords are matched as
// lowercase substrings, first template wins.
type template struct {
	keywords    []string
	sql         string
	explanation string
	complexity  string
	charts      []models.ChartConfig
}

var templates = []template{
	{
		keywords: []string{"umsatz", "revenue"},
		sql: `SELECT
  DATE_TRUNC('month', created_at) as month,
  SUM(amount) as total_revenue,
  COUNT(*) as order_count
FROM orders
WHERE created_at >= DATE_SUB(NOW(), INTERVAL 6 MONTH)
GROUP BY DATE_TRUNC('month', created_at)
ORDER BY month;`,
		explanation: "Diese Abfrage analysiert die Umsatzentwicklung über die letzten 6 Monate, gruppiert nach Monaten.",
		complexity:  "low",
		charts: []models.ChartConfig{
			{Type: "line", XAxis: "month", YAxis: "total_revenue", Title: "Umsatzentwicklung"},
			{Type: "bar", XAxis: "month", YAxis: "order_count", Title: "Anzahl Bestellungen"},
		},
	},
	{
		keywords: []string{"kategorie", "category"},
		sql: `SELECT
  category,
  COUNT(*) as product_count,
  AVG(price) as avg_price,
  SUM(sales_count) as total_sales
FROM products
GROUP BY category
ORDER BY total_sales DESC
LIMIT 10;`,
		explanation: "Diese Abfrage analysiert Produktkategorien nach Verkaufszahlen und durchschnittlichen Preisen.",
		complexity:  "low",
		charts: []models.ChartConfig{
			{Type: "pie", DataKey: "total_sales", Title: "Verkäufe nach Kategorie"},
			{Type: "bar", XAxis: "category", YAxis: "avg_price", Title: "Durchschnittspreis nach Kategorie"},
		},
	},
	{
		keywords: []string{"region", "standort"},
		sql: `SELECT
  r.region_name,
  COUNT(DISTINCT c.customer_id) as customer_count,
  SUM(o.amount) as total_revenue,
  AVG(o.amount) as avg_order_value
FROM regions r
JOIN customers c ON r.region_id = c.region_id
JOIN orders o ON c.customer_id = o.customer_id
WHERE o.created_at >= DATE_SUB(NOW(), INTERVAL 1 YEAR)
GROUP BY r.region_name
ORDER BY total_revenue DESC;`,
		explanation: "Diese Abfrage analysiert Kundensegmente und Umsätze nach geografischen Regionen.",
		complexity:  "high",
		charts: []models.ChartConfig{
			{Type: "bar", XAxis: "region_name", YAxis: "total_revenue", Title: "Umsatz nach Region"},
			{Type: "scatter", XAxis: "customer_count", YAxis: "avg_order_value", Title: "Kunden vs. Bestellwert"},
		},
	},
	{
		keywords: []string{"trend", "entwicklung"},
		sql: `SELECT
  DATE(created_at) as date,
  COUNT(*) as daily_orders,
  SUM(amount) as daily_revenue,
  AVG(amount) as avg_order_value,
  LAG(COUNT(*)) OVER (ORDER BY DATE(created_at)) as prev_day_orders
FROM orders
WHERE created_at >= DATE_SUB(NOW(), INTERVAL 30 DAY)
GROUP BY DATE(created_at)
ORDER BY date;`,
		explanation: "Diese Abfrage zeigt tägliche Trends für die letzten 30 Tage mit Vergleichswerten.",
		complexity:  "medium",
		charts: []models.ChartConfig{
			{Type: "line", XAxis: "date", YAxis: "daily_revenue", Title: "Täglicher Umsatz"},
			{Type: "area", XAxis: "date", YAxis: "daily_orders", Title: "Tägliche Bestellungen"},
		},
	},
}

// fallback is used when no template keyword matches the prompt.
var fallback = template{
	sql: `SELECT
  'sample_metric' as metric,
  COUNT(*) as count,
  AVG(value) as average_value
FROM sample_table
WHERE created_at >= DATE_SUB(NOW(), INTERVAL 1 MONTH)
GROUP BY metric
ORDER BY count DESC
LIMIT 10;`,
	explanation: `Beispielabfrage für die eingegebene Anfrage. Für bessere Ergebnisse verwenden Sie spezifische Begriffe wie "Umsatz", "Kategorie" oder "Region".`,
	complexity:  "low",
	charts: []models.ChartConfig{
		{Type: "bar", XAxis: "metric", YAxis: "count", Title: "Metriken Übersicht"},
	},
}

// GenerateFromPrompt maps a free-text prompt to a canned SQL template by
// lowercase substring matching, first match wins. It never touches a live
// database; the returned SQL is a plan, not an executed statement.
func GenerateFromPrompt(prompt string) (*models.QueryGeneration, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	normalized := strings.ToLower(prompt)
	chosen := fallback
	for _, t := range templates {
		if matchesAny(normalized, t.keywords) {
			chosen = t
			break
		}
	}

	return &models.QueryGeneration{
		SQLQuery:            chosen.sql,
		Explanation:         chosen.explanation,
		EstimatedComplexity: chosen.complexity,
		SuggestedCharts:     chosen.charts,
	}, nil
}

func matchesAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
