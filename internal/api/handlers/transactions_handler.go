package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/guide"
	"github.com/jmoellers/insightdeck/internal/models"
	"github.com/jmoellers/insightdeck/internal/transactions"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type TransactionsHandler struct {
	dbclient        core.DbClient
	defaultMerchant string
	log             *logrus.Entry
}

func NewTransactionsHandler(dbclient core.DbClient, defaultMerchant string, log *logrus.Entry) *TransactionsHandler {
	return &TransactionsHandler{dbclient: dbclient, defaultMerchant: defaultMerchant, log: log}
}

type transactionListResponse struct {
	Transactions []models.Transaction    `json:"transactions"`
	Pagination   models.Pagination       `json:"pagination"`
	Stats        models.TransactionStats `json:"stats"`
	MerchantID   string                  `json:"merchant_id"`
}

func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	search := q.Get("search")
	merchantID := q.Get("merchant_id")
	if merchantID == "" {
		merchantID = h.defaultMerchant
	}
	offset := (page - 1) * limit

	txs, total, err := h.dbclient.ListTransactions(r.Context(), merchantID, search, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch transactions")
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	for i := range txs {
		transactions.Annotate(&txs[i])
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: txs,
		Pagination: models.Pagination{
			CurrentPage:       page,
			TotalPages:        totalPages,
			TotalTransactions: total,
			ItemsPerPage:      limit,
			HasMore:           offset+limit < total,
			HasPrevious:       page > 1,
		},
		Stats:      transactions.ComputeStats(txs, total),
		MerchantID: merchantID,
	})
}

type resolutionResponse struct {
	TransactionID string                  `json:"transaction_id"`
	Status        string                  `json:"status"`
	ErrorCategory string                  `json:"errorCategory"`
	Steps         []models.ResolutionStep `json:"steps"`
}

// Resolution returns the canned step-by-step guide matching the
// transaction's derived error category.
func (h *TransactionsHandler) Resolution(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	merchantID := r.URL.Query().Get("merchant_id")
	if merchantID == "" {
		merchantID = h.defaultMerchant
	}

	tx, err := h.dbclient.GetTransactionByID(r.Context(), merchantID, transactionID)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch transactions")
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if tx == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	transactions.Annotate(tx)
	writeJSON(w, http.StatusOK, resolutionResponse{
		TransactionID: tx.TransactionID,
		Status:        tx.Status,
		ErrorCategory: tx.ErrorCategory,
		Steps:         guide.StepsFor(tx.ErrorCategory),
	})
}
