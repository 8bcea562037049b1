package history

import (
	"sort"
	"strings"
	"time"

	"github.com/jmoellers/insightdeck/internal/models"
)

// Categorized buckets history items by age relative to a reference
// instant. Boundaries are day-aligned, so the same item can move buckets
// across a midnight re-render.
type Categorized struct {
	Today     []models.PromptHistoryItem `json:"today"`
	Yesterday []models.PromptHistoryItem `json:"yesterday"`
	ThisWeek  []models.PromptHistoryItem `json:"thisWeek"`
	Older     []models.PromptHistoryItem `json:"older"`
}

// CacheStats summarizes the cached history.
type CacheStats struct {
	Total      int `json:"total"`
	Favorites  int `json:"favorites"`
	Successful int `json:"successful"`
	Pending    int `json:"pending"`
	Errors     int `json:"errors"`
}

// Filter returns the cached items matching the given filters, preserving
// newest-first order. Limit/Offset are ignored here; the cache holds the
// working set and callers page against the remote store.
func (c *Cache) Filter(filters models.HistoryFilters) []models.PromptHistoryItem {
	items := c.Items()
	out := make([]models.PromptHistoryItem, 0, len(items))
	for _, item := range items {
		if matchesFilters(&item, filters) {
			out = append(out, item)
		}
	}
	return out
}

func matchesFilters(item *models.PromptHistoryItem, filters models.HistoryFilters) bool {
	if filters.Search != "" &&
		!strings.Contains(strings.ToLower(item.Prompt), strings.ToLower(filters.Search)) {
		return false
	}
	if len(filters.Status) > 0 && !containsString(filters.Status, item.Status) {
		return false
	}
	if filters.Favorites && !item.IsFavorite {
		return false
	}
	if filters.From != nil && item.Timestamp.Before(*filters.From) {
		return false
	}
	if filters.To != nil && item.Timestamp.After(*filters.To) {
		return false
	}
	if len(filters.Tags) > 0 && !anyOverlap(filters.Tags, item.Tags) {
		return false
	}
	return true
}

// Categorize buckets the filtered history by age relative to now.
func (c *Cache) Categorize(now time.Time, filters models.HistoryFilters) Categorized {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.Add(-24 * time.Hour)
	thisWeek := today.Add(-7 * 24 * time.Hour)

	var cat Categorized
	for _, item := range c.Filter(filters) {
		ts := item.Timestamp.In(now.Location())
		switch {
		case !ts.Before(today):
			cat.Today = append(cat.Today, item)
		case !ts.Before(yesterday):
			cat.Yesterday = append(cat.Yesterday, item)
		case !ts.Before(thisWeek):
			cat.ThisWeek = append(cat.ThisWeek, item)
		default:
			cat.Older = append(cat.Older, item)
		}
	}
	return cat
}

// Suggestions returns up to five prompts or tags containing the query.
func (c *Cache) Suggestions(query string) []string {
	lower := strings.ToLower(query)
	seen := map[string]bool{}
	var out []string

	add := func(s string) {
		if !seen[s] && strings.Contains(strings.ToLower(s), lower) {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, item := range c.Items() {
		add(item.Prompt)
		for _, tag := range item.Tags {
			add(tag)
		}
	}

	sort.Strings(out)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// Stats counts the cached items by outcome.
func (c *Cache) Stats() CacheStats {
	var stats CacheStats
	for _, item := range c.Items() {
		stats.Total++
		if item.IsFavorite {
			stats.Favorites++
		}
		switch item.Status {
		case "success":
			stats.Successful++
		case "pending":
			stats.Pending++
		case "error":
			stats.Errors++
		}
	}
	return stats
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func anyOverlap(want, have []string) bool {
	for _, w := range want {
		if containsString(have, w) {
			return true
		}
	}
	return false
}
