package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/models"
)

type MerchantsHandler struct {
	dbclient core.DbClient
	log      *logrus.Entry
}

func NewMerchantsHandler(dbclient core.DbClient, log *logrus.Entry) *MerchantsHandler {
	return &MerchantsHandler{dbclient: dbclient, log: log}
}

func (h *MerchantsHandler) List(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.dbclient.ListMerchants(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to list merchants")
		writeError(w, http.StatusInternalServerError, "Failed to fetch merchants")
		return
	}
	if merchants == nil {
		merchants = []models.Merchant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"merchants": merchants})
}
