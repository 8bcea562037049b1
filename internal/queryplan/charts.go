package queryplan

import (
	"strings"

	"github.com/jmoellers/insightdeck/internal/models"
)

// ChartsForResult derives chart configurations for a query result.
//
// Suggested types from the collaborator win: each one becomes a config
// titled "<Type> Chart" bound to the first two result columns. Without
// suggestions, a result with at least two columns gets exactly one bar
// chart whose y axis is the first column (after the first) holding a
// numeric value in any row, defaulting to the second column. Anything
// thinner degrades to no charts; the caller renders the raw data view.
func ChartsForResult(suggested []string, result *models.QueryResult) []models.ChartConfig {
	charts := []models.ChartConfig{}
	if result == nil || len(result.Data) == 0 {
		return charts
	}

	for _, chartType := range suggested {
		if chartType == "" {
			continue
		}
		charts = append(charts, models.ChartConfig{
			Type:  chartType,
			Title: capitalize(chartType) + " Chart",
			XAxis: columnAt(result.Columns, 0),
			YAxis: columnAt(result.Columns, 1),
		})
	}

	if len(charts) == 0 && len(result.Columns) >= 2 {
		xAxis := result.Columns[0]
		yAxis := firstNumericColumn(result)
		charts = append(charts, models.ChartConfig{
			Type:  "bar",
			Title: yAxis + " by " + xAxis,
			XAxis: xAxis,
			YAxis: yAxis,
		})
	}

	return charts
}

// firstNumericColumn returns the first column after the x axis with a
// numeric value in at least one row, or the second column if none qualify.
func firstNumericColumn(result *models.QueryResult) string {
	for _, col := range result.Columns[1:] {
		for _, row := range result.Data {
			if isNumeric(row[col]) {
				return col
			}
		}
	}
	return result.Columns[1]
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func columnAt(columns []string, i int) string {
	if i < len(columns) {
		return columns[i]
	}
	if i == 0 {
		return "x"
	}
	return "y"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
