package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/models"
)

// fakeDB is an in-memory DbClient for handler tests.
type fakeDB struct {
	users     map[string]*models.User
	tokens    map[string]*models.MagicLinkToken
	merchants []models.Merchant
	grants    []models.UserMerchant
	txs       []models.Transaction
	failList  bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:  map[string]*models.User{},
		tokens: map[string]*models.MagicLinkToken{},
	}
}

func (f *fakeDB) CreateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeDB) CreateMagicLinkToken(_ context.Context, t *models.MagicLinkToken) error {
	f.tokens[t.ID] = t
	return nil
}

func (f *fakeDB) GetActiveMagicLinkTokens(_ context.Context, userID string) ([]models.MagicLinkToken, error) {
	var out []models.MagicLinkToken
	for _, t := range f.tokens {
		if t.UserID == userID && t.UsedAt == nil && t.ExpiresAt.After(time.Now()) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeDB) MarkMagicLinkTokenUsed(_ context.Context, id string) error {
	now := time.Now()
	f.tokens[id].UsedAt = &now
	return nil
}

func (f *fakeDB) ListMerchants(context.Context) ([]models.Merchant, error) {
	return f.merchants, nil
}

func (f *fakeDB) ListUserMerchants(_ context.Context, userID string) ([]models.UserMerchant, error) {
	var out []models.UserMerchant
	for _, g := range f.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeDB) CreatePromptHistory(context.Context, *models.PromptHistoryItem) error { return nil }
func (f *fakeDB) GetPromptHistory(context.Context, models.HistoryFilters) ([]models.PromptHistoryItem, error) {
	return nil, nil
}
func (f *fakeDB) UpdatePromptHistory(context.Context, string, models.HistoryUpdate) (*models.PromptHistoryItem, error) {
	return nil, nil
}
func (f *fakeDB) DeletePromptHistory(context.Context, string) error { return nil }
func (f *fakeDB) DeleteAllPromptHistory(context.Context) error      { return nil }

func (f *fakeDB) ListTransactions(_ context.Context, merchantID, search string, limit, offset int) ([]models.Transaction, int, error) {
	if f.failList {
		return nil, 0, errors.New("db down")
	}
	var matching []models.Transaction
	for _, tx := range f.txs {
		if tx.MerchantID == merchantID {
			matching = append(matching, tx)
		}
	}
	total := len(matching)
	if offset >= len(matching) {
		return nil, total, nil
	}
	matching = matching[offset:]
	if len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, total, nil
}

func (f *fakeDB) GetTransactionByID(_ context.Context, merchantID, transactionID string) (*models.Transaction, error) {
	for _, tx := range f.txs {
		if tx.MerchantID == merchantID && tx.TransactionID == transactionID {
			found := tx
			return &found, nil
		}
	}
	return nil, nil
}

var _ core.DbClient = (*fakeDB)(nil)
