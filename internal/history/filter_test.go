package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoellers/insightdeck/internal/models"
)

func seeded(t *testing.T) (*Cache, time.Time) {
	t.Helper()
	cache := newTestCache(t, &fakeRemote{})
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	seed := []models.PromptHistoryItem{
		{ID: "1", Prompt: "Umsatz heute", Status: "success", IsFavorite: true,
			Tags: []string{"kpi"}, Timestamp: now.Add(-1 * time.Hour), ChartTypes: []string{}},
		{ID: "2", Prompt: "Fehlgeschlagene Zahlungen", Status: "error",
			Tags: []string{}, Timestamp: now.Add(-26 * time.Hour), ChartTypes: []string{}},
		{ID: "3", Prompt: "Umsatz pro Region", Status: "success",
			Tags: []string{"region"}, Timestamp: now.Add(-4 * 24 * time.Hour), ChartTypes: []string{}},
		{ID: "4", Prompt: "Altes Reporting", Status: "pending",
			Tags: []string{}, Timestamp: now.Add(-30 * 24 * time.Hour), ChartTypes: []string{}},
	}
	require.NoError(t, cache.local.ReplaceAll(seed))
	cache.items = seed
	return cache, now
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	cache, _ := seeded(t)

	got := cache.Filter(models.HistoryFilters{Search: "umsatz"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestFilter_StatusAndFavorites(t *testing.T) {
	cache, _ := seeded(t)

	got := cache.Filter(models.HistoryFilters{Status: []string{"error", "pending"}})
	require.Len(t, got, 2)

	got = cache.Filter(models.HistoryFilters{Favorites: true})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilter_Tags(t *testing.T) {
	cache, _ := seeded(t)
	got := cache.Filter(models.HistoryFilters{Tags: []string{"region", "missing"}})
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestCategorize_DayAlignedBuckets(t *testing.T) {
	cache, now := seeded(t)

	cat := cache.Categorize(now, models.HistoryFilters{})
	require.Len(t, cat.Today, 1)
	assert.Equal(t, "1", cat.Today[0].ID)
	require.Len(t, cat.Yesterday, 1)
	assert.Equal(t, "2", cat.Yesterday[0].ID)
	require.Len(t, cat.ThisWeek, 1)
	assert.Equal(t, "3", cat.ThisWeek[0].ID)
	require.Len(t, cat.Older, 1)
	assert.Equal(t, "4", cat.Older[0].ID)
}

func TestSuggestions_CappedAtFive(t *testing.T) {
	cache := newTestCache(t, &fakeRemote{})
	for _, p := range []string{"umsatz a", "umsatz b", "umsatz c", "umsatz d", "umsatz e", "umsatz f"} {
		_, err := cache.AddPrompt(NewPromptInput{Prompt: p, Status: "success"})
		require.NoError(t, err)
	}
	cache.Flush()

	got := cache.Suggestions("umsatz")
	assert.Len(t, got, 5)

	assert.Empty(t, cache.Suggestions("no-match-at-all"))
}

func TestStats(t *testing.T) {
	cache, _ := seeded(t)
	stats := cache.Stats()
	assert.Equal(t, CacheStats{Total: 4, Favorites: 1, Successful: 2, Pending: 1, Errors: 1}, stats)
}
