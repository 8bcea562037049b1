package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_RejectsMissingQuery(t *testing.T) {
	svc := NewQueryService()
	_, err := svc.Execute(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingSQL)
}

func TestExecute_Denylist(t *testing.T) {
	svc := NewQueryService()
	for _, q := range []string{
		"DROP TABLE users",
		"select * from t; DELETE from t",
		"TRUNCATE basic_paying_flow",
		"select 1; update users set email = 'x'",
	} {
		_, err := svc.Execute(context.Background(), q)
		assert.ErrorIs(t, err, ErrDangerousQuery, q)
	}
}

func TestExecute_MonthlyRevenueShape(t *testing.T) {
	svc := NewQueryService()
	res, err := svc.Execute(context.Background(), "SELECT month FROM orders GROUP BY month")
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "total_revenue", "order_count"}, res.Columns)
	require.Equal(t, 6, res.RowCount)
	assert.Equal(t, "2024-01", res.Data[0]["month"])
	for _, row := range res.Data {
		assert.GreaterOrEqual(t, row["total_revenue"].(int), 20000)
		assert.GreaterOrEqual(t, row["order_count"].(int), 100)
	}
}

func TestExecute_CategoryShape(t *testing.T) {
	svc := NewQueryService()
	res, err := svc.Execute(context.Background(), "SELECT * FROM products GROUP BY category")
	require.NoError(t, err)

	require.Equal(t, 6, res.RowCount)
	assert.Equal(t, "Elektronik", res.Data[0]["category"])
	assert.Equal(t, []string{"category", "product_count", "avg_price", "total_sales"}, res.Columns)
}

func TestExecute_RegionsAndDailyShapes(t *testing.T) {
	svc := NewQueryService()

	res, err := svc.Execute(context.Background(), "SELECT regions JOIN customers")
	require.NoError(t, err)
	assert.Equal(t, 5, res.RowCount)
	assert.Equal(t, "Nord", res.Data[0]["region_name"])

	res, err = svc.Execute(context.Background(), "SELECT date, daily stats")
	require.NoError(t, err)
	assert.Equal(t, 30, res.RowCount)
	assert.Nil(t, res.Data[0]["prev_day_orders"])
	assert.Equal(t, res.Data[0]["daily_orders"], res.Data[1]["prev_day_orders"])
}

func TestExecute_DefaultShape(t *testing.T) {
	svc := NewQueryService()
	res, err := svc.Execute(context.Background(), "SELECT something FROM somewhere")
	require.NoError(t, err)

	assert.Equal(t, []string{"metric", "count", "average_value"}, res.Columns)
	assert.Equal(t, 5, res.RowCount)
	assert.Equal(t, "Verkäufe", res.Data[0]["metric"])
}

func TestExecute_IsDeterministic(t *testing.T) {
	svc := NewQueryService()
	a, err := svc.Execute(context.Background(), "SELECT * FROM orders BY month")
	require.NoError(t, err)
	b, err := svc.Execute(context.Background(), "SELECT * FROM orders BY month")
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}
