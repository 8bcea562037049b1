package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/models"
)

// remoteSyncLimit bounds the full reconciliation fetch.
const remoteSyncLimit = 500

// remoteTimeout bounds each best-effort remote write.
const remoteTimeout = 10 * time.Second

// RemoteStore is the Postgres-backed mirror of the cache. Satisfied by
// core.DbClient; narrowed here so tests can fake it.
type RemoteStore interface {
	CreatePromptHistory(ctx context.Context, item *models.PromptHistoryItem) error
	GetPromptHistory(ctx context.Context, filters models.HistoryFilters) ([]models.PromptHistoryItem, error)
	UpdatePromptHistory(ctx context.Context, id string, update models.HistoryUpdate) (*models.PromptHistoryItem, error)
	DeletePromptHistory(ctx context.Context, id string) error
	DeleteAllPromptHistory(ctx context.Context) error
}

// NewPromptInput carries the caller-supplied fields of a new history item.
type NewPromptInput struct {
	Prompt        string
	SQLQuery      string
	ExecutionTime int64
	Status        string
	ResultCount   int
	ChartTypes    []string
	IsFavorite    bool
	Tags          []string
}

// Cache is the local-first history. Writes land in the local store
// synchronously, then are pushed to the remote store in the background;
// remote failures are logged and swallowed. The periodic sync loop
// replaces the entire local state with the remote list (last-sync-wins,
// not a merge), so a local write whose remote push failed can be undone
// by the next tick.
type Cache struct {
	mu     sync.Mutex
	items  []models.PromptHistoryItem
	local  *LocalStore
	remote RemoteStore

	interval time.Duration
	log      *logrus.Entry
	wg       sync.WaitGroup
}

// NewCache builds the cache, warm-started from the local store.
func NewCache(local *LocalStore, remote RemoteStore, interval time.Duration) (*Cache, error) {
	items, err := local.LoadAll()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Cache{
		items:    items,
		local:    local,
		remote:   remote,
		interval: interval,
		log:      logrus.WithField("component", "history"),
	}, nil
}

// Close waits for in-flight remote writes and closes the local store.
func (c *Cache) Close() error {
	c.wg.Wait()
	return c.local.Close()
}

// AddPrompt creates a history item, writes it to the local cache first so
// the caller sees it immediately, then mirrors it to the remote store in
// the background.
func (c *Cache) AddPrompt(input NewPromptInput) (*models.PromptHistoryItem, error) {
	now := time.Now().UTC()
	item := models.PromptHistoryItem{
		ID:            uuid.NewString(),
		Prompt:        input.Prompt,
		SQLQuery:      input.SQLQuery,
		Timestamp:     now,
		ExecutionTime: input.ExecutionTime,
		Status:        input.Status,
		ResultCount:   input.ResultCount,
		ChartTypes:    orEmpty(input.ChartTypes),
		IsFavorite:    input.IsFavorite,
		Tags:          orEmpty(input.Tags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.Status == "" {
		item.Status = "pending"
	}

	c.mu.Lock()
	if err := c.local.Insert(&item); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.items = append([]models.PromptHistoryItem{item}, c.items...)
	c.mu.Unlock()

	c.persist(func(ctx context.Context) error {
		return c.remote.CreatePromptHistory(ctx, &item)
	}, "create", item.ID)

	return &item, nil
}

// UpdatePrompt applies a partial update locally and mirrors it remotely.
func (c *Cache) UpdatePrompt(id string, update models.HistoryUpdate) (*models.PromptHistoryItem, bool) {
	c.mu.Lock()
	var updated *models.PromptHistoryItem
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		applyUpdate(&c.items[i], update)
		c.items[i].UpdatedAt = time.Now().UTC()
		if err := c.local.Update(&c.items[i]); err != nil {
			c.log.WithError(err).Warn("local history update failed")
		}
		clone := c.items[i]
		updated = &clone
		break
	}
	c.mu.Unlock()

	if updated == nil {
		return nil, false
	}

	c.persist(func(ctx context.Context) error {
		_, err := c.remote.UpdatePromptHistory(ctx, id, update)
		return err
	}, "update", id)

	return updated, true
}

// ToggleFavorite flips the favorite flag of one item.
func (c *Cache) ToggleFavorite(id string) (*models.PromptHistoryItem, bool) {
	c.mu.Lock()
	var current *bool
	for i := range c.items {
		if c.items[i].ID == id {
			v := !c.items[i].IsFavorite
			current = &v
			break
		}
	}
	c.mu.Unlock()

	if current == nil {
		return nil, false
	}
	return c.UpdatePrompt(id, models.HistoryUpdate{IsFavorite: current})
}

// DeletePrompt removes one item locally and best-effort remotely.
func (c *Cache) DeletePrompt(id string) bool {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			found = true
			break
		}
	}
	if found {
		if err := c.local.Delete(id); err != nil {
			c.log.WithError(err).Warn("local history delete failed")
		}
	}
	c.mu.Unlock()

	if !found {
		return false
	}

	c.persist(func(ctx context.Context) error {
		return c.remote.DeletePromptHistory(ctx, id)
	}, "delete", id)
	return true
}

// ClearHistory drops everything locally and best-effort remotely.
func (c *Cache) ClearHistory() error {
	c.mu.Lock()
	c.items = nil
	err := c.local.Clear()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.persist(func(ctx context.Context) error {
		return c.remote.DeleteAllPromptHistory(ctx)
	}, "clear", "")
	return nil
}

// Items returns a snapshot of the current history, newest first.
func (c *Cache) Items() []models.PromptHistoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.PromptHistoryItem, len(c.items))
	copy(out, c.items)
	return out
}

// Run drives the periodic full reconciliation until ctx is cancelled.
func (c *Cache) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil {
				c.log.WithError(err).Warn("history sync failed")
			}
		}
	}
}

// Sync fetches the complete remote list and replaces the local state with
// it. This is a destructive overwrite: local mutations whose remote write
// failed since the last tick are lost.
func (c *Cache) Sync(ctx context.Context) error {
	remote, err := c.remote.GetPromptHistory(ctx, models.HistoryFilters{Limit: remoteSyncLimit})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.local.ReplaceAll(remote); err != nil {
		return err
	}
	c.items = remote
	return nil
}

// persist runs one best-effort remote write in the background. Failures
// are logged only; the local copy stays the user-visible truth.
func (c *Cache) persist(fn func(context.Context) error, op, id string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{"op": op, "id": id}).
				Warn("failed to sync history to database")
		}
	}()
}

// Flush waits for all outstanding background remote writes. Used by tests
// and shutdown.
func (c *Cache) Flush() {
	c.wg.Wait()
}

func applyUpdate(item *models.PromptHistoryItem, update models.HistoryUpdate) {
	if update.IsFavorite != nil {
		item.IsFavorite = *update.IsFavorite
	}
	if update.Tags != nil {
		item.Tags = orEmpty(*update.Tags)
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.ExecutionTime != nil {
		item.ExecutionTime = *update.ExecutionTime
	}
	if update.ResultCount != nil {
		item.ResultCount = *update.ResultCount
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
