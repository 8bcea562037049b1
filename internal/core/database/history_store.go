package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoellers/insightdeck/internal/models"
)

// Implementing the db interface for prompt history

func (c *DatabaseClient) CreatePromptHistory(ctx context.Context, item *models.PromptHistoryItem) error {
	if item == nil {
		return errors.New("nil history item")
	}
	const q = `
		INSERT INTO prompt_history
			(id, prompt, sql_query, timestamp, execution_time, status, result_count, chart_types, tags, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()), COALESCE($12, now()))
		ON CONFLICT (id) DO NOTHING
	`
	_, err := c.db.ExecContext(ctx, q,
		item.ID, item.Prompt, item.SQLQuery, item.Timestamp, item.ExecutionTime,
		item.Status, item.ResultCount, encodeJSONList(item.ChartTypes), encodeJSONList(item.Tags),
		item.IsFavorite, item.CreatedAt, item.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetPromptHistory(ctx context.Context, filters models.HistoryFilters) ([]models.PromptHistoryItem, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Search != "" {
		conds = append(conds, "prompt ILIKE "+arg("%"+filters.Search+"%"))
	}
	if len(filters.Status) > 0 {
		placeholders := make([]string, len(filters.Status))
		for i, s := range filters.Status {
			placeholders[i] = arg(s)
		}
		conds = append(conds, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filters.Favorites {
		conds = append(conds, "is_favorite = TRUE")
	}

	q := `
		SELECT id, prompt, sql_query, timestamp, execution_time, status, result_count, chart_types, tags, is_favorite, created_at, updated_at
		FROM prompt_history
	`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " LIMIT " + arg(limit) + " OFFSET " + arg(filters.Offset)

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PromptHistoryItem
	for rows.Next() {
		item, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdatePromptHistory(ctx context.Context, id string, update models.HistoryUpdate) (*models.PromptHistoryItem, error) {
	var (
		sets []string
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.IsFavorite != nil {
		sets = append(sets, "is_favorite = "+arg(*update.IsFavorite))
	}
	if update.Tags != nil {
		sets = append(sets, "tags = "+arg(encodeJSONList(*update.Tags)))
	}
	if update.Status != nil {
		sets = append(sets, "status = "+arg(*update.Status))
	}
	if update.ExecutionTime != nil {
		sets = append(sets, "execution_time = "+arg(*update.ExecutionTime))
	}
	if update.ResultCount != nil {
		sets = append(sets, "result_count = "+arg(*update.ResultCount))
	}
	if len(sets) == 0 {
		return nil, errors.New("empty update")
	}
	sets = append(sets, "updated_at = now()")

	q := "UPDATE prompt_history SET " + strings.Join(sets, ", ") +
		" WHERE id = " + arg(id) +
		" RETURNING id, prompt, sql_query, timestamp, execution_time, status, result_count, chart_types, tags, is_favorite, created_at, updated_at"

	item, err := scanHistoryRow(c.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (c *DatabaseClient) DeletePromptHistory(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM prompt_history WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("history item not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteAllPromptHistory(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM prompt_history`)
	return err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHistoryRow(row scanner) (*models.PromptHistoryItem, error) {
	var item models.PromptHistoryItem
	var chartTypes, tags string
	if err := row.Scan(&item.ID, &item.Prompt, &item.SQLQuery, &item.Timestamp, &item.ExecutionTime,
		&item.Status, &item.ResultCount, &chartTypes, &tags, &item.IsFavorite,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.ChartTypes = decodeJSONList(chartTypes)
	item.Tags = decodeJSONList(tags)
	return &item, nil
}

// Chart types and tags are stored as JSON text, matching the remote
// schema the dashboard always used.
func encodeJSONList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func decodeJSONList(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}
