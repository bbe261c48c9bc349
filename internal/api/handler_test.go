package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/config"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	paymentService := service.NewPaymentService(nil, nil, nil, config.PaymentsConfig{
		BankAccountNumber: "20208000900000000001",
		BankName:          "Kapitalbank",
		BankMFO:           "01088",
		AccountHolder:     "OPTOM SAVDO MCHJ",
	})

	router := gin.New()
	handler := NewHandler(nil, nil, nil, paymentService)
	handler.SetupRoutes(router)
	return router
}

func TestListPaymentMethods(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Methods []service.PaymentMethod `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Methods, 3)
	for _, m := range resp.Methods {
		assert.NotEmpty(t, m.LabelUz)
		assert.NotEmpty(t, m.LabelRu)
	}
}

func TestGetBankDetails(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/bank-details", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var details service.BankDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "20208000900000000001", details.AccountNumber)
	assert.Equal(t, "Kapitalbank", details.BankName)
}

func TestCartRequiresOwnerHeader(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
