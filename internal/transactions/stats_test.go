package transactions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoellers/insightdeck/internal/models"
)

func annotated(eventType, failure, device, currency string, amount float64) models.Transaction {
	tx := models.Transaction{
		EventType:           eventType,
		EventFailureMessage: failure,
		DeviceType:          device,
		Currency:            currency,
		TotalAmount:         amount,
	}
	Annotate(&tx)
	return tx
}

func TestComputeStats(t *testing.T) {
	txs := []models.Transaction{
		annotated("payment_succeeded", "", "desktop", "EUR", 100),
		annotated("payment_succeeded", "", "mobile", "EUR", 50),
		annotated("checkout_started", "", "mobile", "USD", 25),
		annotated("payment_failed", "card declined", "desktop", "EUR", 75),
	}

	stats := ComputeStats(txs, 4)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Pending)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.001)
	assert.InDelta(t, 250.0, stats.TotalVolume, 0.001)
	assert.InDelta(t, 62.5, stats.AvgAmount, 0.001)

	assert.Equal(t, 1, stats.ErrorsByCategory["payment"])
	assert.Equal(t, 2, stats.ByDeviceType["desktop"])
	assert.Equal(t, 2, stats.ByDeviceType["mobile"])
	assert.Equal(t, 3, stats.ByCurrency["EUR"])
	assert.Equal(t, 1, stats.ByCurrency["USD"])
}

func TestComputeStats_AllCategoriesPresent(t *testing.T) {
	stats := ComputeStats(nil, 0)
	require.Len(t, stats.ErrorsByCategory, len(Categories))
	for _, cat := range Categories {
		count, ok := stats.ErrorsByCategory[cat]
		assert.True(t, ok, "category %q missing", cat)
		assert.Zero(t, count)
	}
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AvgAmount)
}

func TestComputeStats_TotalLargerThanPage(t *testing.T) {
	// The exact count comes from the store; the page only holds 2 rows.
	txs := []models.Transaction{
		annotated("payment_succeeded", "", "desktop", "EUR", 10),
		annotated("payment_succeeded", "", "desktop", "EUR", 30),
	}

	stats := ComputeStats(txs, 100)
	assert.Equal(t, 100, stats.Total)
	assert.InDelta(t, 2.0, stats.SuccessRate, 0.001)
	assert.InDelta(t, 20.0, stats.AvgAmount, 0.001)
}

func TestComputeStats_MissingDeviceAndCurrencyFallBack(t *testing.T) {
	txs := []models.Transaction{annotated("payment_succeeded", "", "", "", 5)}
	stats := ComputeStats(txs, 1)
	assert.Equal(t, 1, stats.ByDeviceType["unknown"])
	assert.Equal(t, 1, stats.ByCurrency["EUR"])
}
