package handler

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/bizledger/internal/auth"
	"github.com/iurnickita/bizledger/internal/handler/config"
	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/service"
	serviceConfig "github.com/iurnickita/bizledger/internal/service/config"
	"github.com/iurnickita/bizledger/internal/store"
	"github.com/iurnickita/bizledger/internal/token"
)

func newTestRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	svc, err := service.NewService(serviceConfig.Config{}, store.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	return NewRouter(cfg, auth.NewAuth(cfg.TokenSecret), svc, zap.NewNop())
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireAmount(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(expected).Equal(actual), "want %s, got %s", expected, actual)
}

func invoiceBody(id, total, due string) string {
	return fmt.Sprintf(`{"id":%q,"customerId":"c1","date":"2024-01-01T00:00:00Z",
		"items":[{"productId":"p1","productName":"Rice 25kg","quantity":1,"unitPrice":%s,"gstPercent":0}],
		"discount":0,"paymentTerm":"Credit","dueDate":%q}`, id, total, due)
}

func TestLedgerRoutes(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	w := do(t, router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Asha Traders"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Asha Traders"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/invoices", invoiceBody("inv1", "100", "2024-01-10T00:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/api/invoices", invoiceBody("inv2", "50", "2024-02-10T00:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("single payment", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/invoices/inv2/payments", `{"amount":60,"mode":"Cash"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = do(t, router, http.MethodPost, "/api/invoices/inv2/payments", `{"amount":20,"mode":"UPI"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		response := decode[RecordPaymentJSONResponse](t, w)
		requireAmount(t, "30", response.Invoice.BalanceDue)

		w = do(t, router, http.MethodDelete, "/api/invoices/inv2/payments/"+response.Payment.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		invoice := decode[model.Invoice](t, w)
		requireAmount(t, "50", invoice.BalanceDue)
		require.Equal(t, model.StatusPending, invoice.Status)
	})

	t.Run("bulk payment", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/customers/c1/payments", `{"amount":0,"mode":"Cash"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = do(t, router, http.MethodPost, "/api/customers/c1/payments", `{"amount":130,"mode":"Cash"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode[model.BulkAllocation](t, w)
		require.Len(t, result.Allocations, 2)
		require.Equal(t, "inv1", result.Allocations[0].InvoiceID)
		require.Equal(t, model.StatusFulfilled, result.Allocations[0].Status)
		requireAmount(t, "30", result.Allocations[1].AmountAllocated)
		require.True(t, result.UnallocatedRemainder.IsZero())
	})

	t.Run("ledger", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/customers/c1/ledger", "")
		require.Equal(t, http.StatusOK, w.Code)
		snapshot := decode[model.CustomerLedgerSnapshot](t, w)
		requireAmount(t, "150", snapshot.TotalSpent)
		requireAmount(t, "20", snapshot.TotalDue)

		w = do(t, router, http.MethodPost, "/api/customers/recalculate", `{"ids":["c1"]}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decode[[]model.CustomerLedgerSnapshot](t, w), 1)

		w = do(t, router, http.MethodDelete, "/api/customers/c1/invoices/inv2", "")
		require.Equal(t, http.StatusOK, w.Code)
		snapshot = decode[model.CustomerLedgerSnapshot](t, w)
		requireAmount(t, "100", snapshot.TotalSpent)
		require.True(t, snapshot.TotalDue.IsZero())
	})

	t.Run("errors", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/invoices/nope", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Contains(t, decode[ErrorJSONResponse](t, w).Error, "not found")

		w = do(t, router, http.MethodPost, "/api/invoices/inv1/payments", `{"amount":`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = do(t, router, http.MethodPost, "/api/invoices/inv1/payments", `{"amount":1,"mode":"Cash","tip":5}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = do(t, router, http.MethodPost, "/api/customers/c1/recalculate", "")
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPurchaseRoutes(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	w := do(t, router, http.MethodPost, "/api/suppliers", `{"id":"s1","name":"Metro Wholesale"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/purchases", `{"id":"P1","supplierId":"s1","date":"2024-01-01T00:00:00Z",
		"items":[{"productId":"x","quantity":2,"unitPrice":100,"gstPercent":5}],"discount":0,
		"isGstInvoice":true,"paymentTerm":"Paid"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requireAmount(t, "210", decode[model.Purchase](t, w).GrandTotal)

	w = do(t, router, http.MethodPut, "/api/purchases/P1", `{"items":[{"productId":"x","quantity":1,"unitPrice":100,"gstPercent":0}],"discount":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	requireAmount(t, "100", decode[model.Purchase](t, w).GrandTotal)

	w = do(t, router, http.MethodPost, "/api/purchases/P1/payments", `{"amount":40,"mode":"Cheque"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paid := decode[RecordPurchasePaymentJSONResponse](t, w)
	requireAmount(t, "60", paid.Purchase.BalanceDue)

	w = do(t, router, http.MethodPost, "/api/suppliers/s1/payments", `{"amount":100,"mode":"Bank Transfer"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[model.BulkAllocation](t, w)
	requireAmount(t, "60", result.TotalAllocated)
	requireAmount(t, "40", result.UnallocatedRemainder)

	w = do(t, router, http.MethodGet, "/api/suppliers/s1/ledger", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decode[model.SupplierLedgerSnapshot](t, w).TotalDue.IsZero())

	w = do(t, router, http.MethodPost, "/api/purchases/P1/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, model.StatusCanceled, decode[model.Purchase](t, w).Status)

	w = do(t, router, http.MethodDelete, "/api/suppliers/s1/purchases/P1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[model.SupplierLedgerSnapshot](t, w).Purchases)
}

func TestQuantityMustBeWhole(t *testing.T) {
	router := newTestRouter(t, config.Config{})
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/customers", `{"id":"c1","name":"Asha Traders"}`).Code)

	body := strings.Replace(invoiceBody("inv-1", "100", "2024-02-01T00:00:00Z"), `"quantity":1`, `"quantity":2.5`, 1)
	w := do(t, router, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/invoices/inv-1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorResponseGzipped(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	r := httptest.NewRequest(http.MethodGet, "/api/invoices/missing", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Contains(t, string(body), "missing")
}

func TestRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, config.Config{TokenSecret: "secret"})

	w := do(t, router, http.MethodGet, "/api/customers/c1/ledger", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	tokenString, err := token.BuildJWTString("secret", "clerk", time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/api/customers/c1/ledger", nil)
	r.Header.Set("Authorization", "Bearer "+tokenString)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, config.Config{CORSOrigins: []string{"http://localhost:5173"}})

	r := httptest.NewRequest(http.MethodOptions, "/api/invoices", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusConflict, statusOf(service.ErrAlreadyExists))
	require.Equal(t, http.StatusUnprocessableEntity, statusOf(ledger.Validationf("bad")))
	require.Equal(t, http.StatusNotFound, statusOf(ledger.NotFoundf("gone")))
	require.Equal(t, http.StatusServiceUnavailable, statusOf(&ledger.StoreError{Op: "put", Err: fmt.Errorf("timeout")}))
	require.Equal(t, http.StatusInternalServerError, statusOf(fmt.Errorf("boom")))
}
