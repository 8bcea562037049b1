package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoellers/insightdeck/internal/models"
)

func transactionsRouter(db *fakeDB) *chi.Mux {
	h := NewTransactionsHandler(db, "merchant_008", testLog())
	r := chi.NewRouter()
	r.Get("/transactions", h.List)
	r.Get("/transactions/{id}/resolution", h.Resolution)
	return r
}

func seedTransactions(db *fakeDB) {
	db.txs = []models.Transaction{
		{TransactionID: "tx-1", MerchantID: "merchant_008", EventType: "payment_succeeded",
			TotalAmount: 100, DeviceType: "mobile", Currency: "EUR"},
		{TransactionID: "tx-2", MerchantID: "merchant_008", EventType: "payment_failed",
			EventFailureMessage: "Network timeout occurred", TotalAmount: 50, DeviceType: "desktop", Currency: "EUR"},
		{TransactionID: "tx-3", MerchantID: "merchant_008", EventType: "checkout_started",
			TotalAmount: 25, Currency: "USD"},
		{TransactionID: "tx-other", MerchantID: "merchant_001", EventType: "payment_succeeded"},
	}
}

func TestTransactionsList(t *testing.T) {
	db := newFakeDB()
	seedTransactions(db)
	r := transactionsRouter(db)

	rec := doRequest(r, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []models.Transaction    `json:"transactions"`
		Pagination   models.Pagination       `json:"pagination"`
		Stats        models.TransactionStats `json:"stats"`
		MerchantID   string                  `json:"merchant_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "merchant_008", resp.MerchantID)
	require.Len(t, resp.Transactions, 3, "other merchants are filtered out")

	// Derived annotations are present.
	byID := map[string]models.Transaction{}
	for _, tx := range resp.Transactions {
		byID[tx.TransactionID] = tx
	}
	assert.Equal(t, "success", byID["tx-1"].Status)
	assert.Equal(t, "failed", byID["tx-2"].Status)
	assert.Equal(t, "network", byID["tx-2"].ErrorCategory)
	assert.Equal(t, "pending", byID["tx-3"].Status)

	assert.Equal(t, 3, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.Failed)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasMore)
}

func TestTransactionsList_Pagination(t *testing.T) {
	db := newFakeDB()
	seedTransactions(db)
	r := transactionsRouter(db)

	rec := doRequest(r, http.MethodGet, "/transactions?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
		Pagination   models.Pagination    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 1)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasPrevious)
	assert.False(t, resp.Pagination.HasMore)
}

func TestTransactionsList_LimitIsCapped(t *testing.T) {
	db := newFakeDB()
	r := transactionsRouter(db)

	rec := doRequest(r, http.MethodGet, "/transactions?limit=500", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.Pagination.ItemsPerPage)
}

func TestTransactionsList_DBError(t *testing.T) {
	db := newFakeDB()
	db.failList = true
	r := transactionsRouter(db)

	rec := doRequest(r, http.MethodGet, "/transactions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch transactions"}`, rec.Body.String())
}

func TestTransactionResolution(t *testing.T) {
	db := newFakeDB()
	seedTransactions(db)
	r := transactionsRouter(db)

	rec := doRequest(r, http.MethodGet, "/transactions/tx-2/resolution", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp resolutionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "network", resp.ErrorCategory)
	require.NotEmpty(t, resp.Steps)
	assert.NotEmpty(t, resp.Steps[0].Title)
}

func TestTransactionResolution_NotFound(t *testing.T) {
	db := newFakeDB()
	r := transactionsRouter(db)

	rec := doRequest(r, http.MethodGet, "/transactions/nope/resolution", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
