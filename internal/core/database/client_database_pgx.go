package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jmoellers/insightdeck/internal/config"
	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, COALESCE($3, now()), COALESCE($4, now()))
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.Email, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, email, created_at, updated_at
		FROM users WHERE id = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for magic-link tokens

func (c *DatabaseClient) CreateMagicLinkToken(ctx context.Context, token *models.MagicLinkToken) error {
	if token == nil {
		return errors.New("nil token")
	}
	const q = `
		INSERT INTO magic_link_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	return err
}

func (c *DatabaseClient) GetActiveMagicLinkTokens(ctx context.Context, userID string) ([]models.MagicLinkToken, error) {
	const q = `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM magic_link_tokens
		WHERE user_id = $1 AND used_at IS NULL AND expires_at > now()
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MagicLinkToken
	for rows.Next() {
		var t models.MagicLinkToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) MarkMagicLinkTokenUsed(ctx context.Context, id string) error {
	const q = `
		UPDATE magic_link_tokens SET used_at = now() WHERE id = $1 AND used_at IS NULL
	`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("token not found or already used: %s", id)
	}
	return nil
}

// Implementing the db interface for merchants

func (c *DatabaseClient) ListMerchants(ctx context.Context) ([]models.Merchant, error) {
	const q = `
		SELECT id, name, COALESCE(category, ''), COALESCE(description, ''), COALESCE(website, ''), status, created_at, updated_at
		FROM merchants
		ORDER BY name
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Merchant
	for rows.Next() {
		var m models.Merchant
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Description, &m.Website, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) ListUserMerchants(ctx context.Context, userID string) ([]models.UserMerchant, error) {
	const q = `
		SELECT um.id, um.user_id, um.merchant_id, um.role, um.created_at,
			m.id, m.name, COALESCE(m.category, ''), COALESCE(m.description, ''), COALESCE(m.website, ''), m.status, m.created_at, m.updated_at
		FROM user_merchants um
		JOIN merchants m ON m.id = um.merchant_id
		WHERE um.user_id = $1
		ORDER BY um.created_at
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserMerchant
	for rows.Next() {
		var um models.UserMerchant
		var m models.Merchant
		if err := rows.Scan(&um.ID, &um.UserID, &um.MerchantID, &um.Role, &um.CreatedAt,
			&m.ID, &m.Name, &m.Category, &m.Description, &m.Website, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		um.Merchant = &m
		out = append(out, um)
	}
	return out, rows.Err()
}
