package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoellers/insightdeck/internal/models"
)

func TestMerchantsList(t *testing.T) {
	db := newFakeDB()
	db.merchants = []models.Merchant{
		{ID: "merchant_008", Name: "Checkout GmbH", Status: "active"},
		{ID: "merchant_001", Name: "Shop AG", Status: "inactive"},
	}
	h := NewMerchantsHandler(db, testLog())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/merchants", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Merchants []models.Merchant `json:"merchants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Merchants, 2)
	assert.Equal(t, "Checkout GmbH", resp.Merchants[0].Name)
}

func TestMerchantsList_Empty(t *testing.T) {
	h := NewMerchantsHandler(newFakeDB(), testLog())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/merchants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"merchants":[]}`, rec.Body.String())
}
