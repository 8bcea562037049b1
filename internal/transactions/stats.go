package transactions

import (
	"github.com/jmoellers/insightdeck/internal/models"
)

// ComputeStats aggregates one annotated page of the feed. total is the
// exact count matching the filter (from the store), while rate/volume
// figures are computed over the page in hand, mirroring the dashboard's
// per-page stats panel. Every known error category is always present in
// ErrorsByCategory, zero-valued buckets included.
func ComputeStats(txs []models.Transaction, total int) models.TransactionStats {
	stats := models.TransactionStats{
		Total:            total,
		ErrorsByCategory: make(map[string]int, len(Categories)),
		ByDeviceType:     make(map[string]int),
		ByCurrency:       make(map[string]int),
	}
	for _, cat := range Categories {
		stats.ErrorsByCategory[cat] = 0
	}

	for _, tx := range txs {
		switch tx.Status {
		case StatusSuccess:
			stats.Successful++
		case StatusFailed:
			stats.Failed++
		case StatusPending:
			stats.Pending++
		}

		if tx.ErrorCategory != "" {
			stats.ErrorsByCategory[tx.ErrorCategory]++
		}

		device := tx.DeviceType
		if device == "" {
			device = "unknown"
		}
		stats.ByDeviceType[device]++

		currency := tx.Currency
		if currency == "" {
			currency = "EUR"
		}
		stats.ByCurrency[currency]++

		stats.TotalVolume += tx.TotalAmount
	}

	if total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(total) * 100
	}
	if len(txs) > 0 {
		stats.AvgAmount = stats.TotalVolume / float64(len(txs))
	}

	return stats
}
