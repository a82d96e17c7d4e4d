package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/iurnickita/bizledger/internal/auth"
	"github.com/iurnickita/bizledger/internal/gzip"
	"github.com/iurnickita/bizledger/internal/handler/config"
	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/logger"
	"github.com/iurnickita/bizledger/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP surface until ctx is done.
func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           NewRouter(cfg, auth, service, zaplog),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		zaplog.Info("ledger server started", zap.String("address", cfg.ServerAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zaplog.Info("ledger server stopped")
	return nil
}

// NewRouter builds the full handler chain: CORS, then per-route gzip, request log and auth.
func NewRouter(cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) http.Handler {
	h := newHandler(auth, service, zaplog)
	router := h.newRouter()
	if len(cfg.CORSOrigins) == 0 {
		return router
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Content-Encoding", "Authorization"},
	})
	return c.Handler(router)
}

type handler struct {
	auth    auth.Auth
	service service.Service
	zaplog  *zap.Logger
}

func newHandler(auth auth.Auth, service service.Service, zaplog *zap.Logger) *handler {
	if zaplog == nil {
		zaplog = zap.NewNop()
	}
	return &handler{
		auth:    auth,
		service: service,
		zaplog:  zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(fn), h.zaplog)))
	}

	// Продажи
	handle("POST /api/customers", h.PostCustomer)
	handle("POST /api/customers/recalculate", h.PostRecalculateCustomers)
	handle("GET /api/customers/{id}/ledger", h.GetCustomerLedger)
	handle("POST /api/customers/{id}/recalculate", h.PostRecalculateCustomer)
	handle("POST /api/customers/{id}/payments", h.PostBulkPayment)
	handle("DELETE /api/customers/{id}/invoices/{invoiceId}", h.DeleteInvoice)
	handle("POST /api/invoices", h.PostInvoice)
	handle("GET /api/invoices/{id}", h.GetInvoice)
	handle("PUT /api/invoices/{id}", h.PutInvoice)
	handle("POST /api/invoices/{id}/cancel", h.PostCancelInvoice)
	handle("POST /api/invoices/{id}/payments", h.PostPayment)
	handle("DELETE /api/invoices/{id}/payments/{paymentId}", h.DeletePayment)

	// Закупки
	handle("POST /api/suppliers", h.PostSupplier)
	handle("POST /api/suppliers/recalculate", h.PostRecalculateSuppliers)
	handle("GET /api/suppliers/{id}/ledger", h.GetSupplierLedger)
	handle("POST /api/suppliers/{id}/recalculate", h.PostRecalculateSupplier)
	handle("POST /api/suppliers/{id}/payments", h.PostBulkSupplierPayment)
	handle("DELETE /api/suppliers/{id}/purchases/{purchaseId}", h.DeletePurchase)
	handle("POST /api/purchases", h.PostPurchase)
	handle("GET /api/purchases/{id}", h.GetPurchase)
	handle("PUT /api/purchases/{id}", h.PutPurchase)
	handle("POST /api/purchases/{id}/cancel", h.PostCancelPurchase)
	handle("POST /api/purchases/{id}/payments", h.PostPurchasePayment)
	handle("DELETE /api/purchases/{id}/payments/{paymentId}", h.DeletePurchasePayment)

	return mux
}

type ErrorJSONResponse struct {
	Error string `json:"error"`
}

// statusOf maps engine error kinds to HTTP codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusOf(err), ErrorJSONResponse{Error: err.Error()})
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(responseJSON); err != nil {
		h.zaplog.Debug("write response", zap.Error(err))
	}
}

// readJSON decodes the request body into v and answers 400 on failure.
func (h *handler) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorJSONResponse{Error: err.Error()})
		return false
	}
	return true
}
