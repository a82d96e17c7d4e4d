// Package ledgerclient talks to the ledger HTTP surface. Error responses are
// turned back into the engine's error kinds, so callers can use errors.Is with
// ledger.ErrValidation, ledger.ErrNotFound and ledger.ErrStore.
package ledgerclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/service"
)

// Payment is the body of single and bulk payment requests.
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Mode   string          `json:"mode"`
	Notes  string          `json:"notes,omitempty"`
}

type Client interface {
	CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error)
	CreateInvoice(ctx context.Context, invoice model.Invoice) (model.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error)
	RecordPayment(ctx context.Context, invoiceID string, payment Payment) (model.Invoice, model.Payment, error)
	DeletePayment(ctx context.Context, invoiceID, paymentID string) (model.Invoice, error)
	DeleteInvoice(ctx context.Context, customerID, invoiceID string) (model.CustomerLedgerSnapshot, error)
	AllocateBulkPayment(ctx context.Context, customerID string, payment Payment) (model.BulkAllocation, error)
	CustomerLedger(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error)
	RecalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error)
	RecalculateCustomers(ctx context.Context, customerIDs []string) ([]model.CustomerLedgerSnapshot, error)

	DeletePurchasePayment(ctx context.Context, purchaseID, paymentID string) (model.Purchase, error)
	DeletePurchase(ctx context.Context, supplierID, purchaseID string) (model.SupplierLedgerSnapshot, error)
	AllocateBulkSupplierPayment(ctx context.Context, supplierID string, payment Payment) (model.BulkAllocation, error)
	SupplierLedger(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error)
	RecalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error)
}

type client struct {
	resty *resty.Client
}

// NewClient builds a client for the service at serviceAddr. An empty token
// sends no Authorization header.
func NewClient(serviceAddr string, token string) Client {
	r := resty.New().
		SetBaseURL(serviceAddr).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		r.SetAuthToken(token)
	}
	return client{resty: r}
}

type errorAnswer struct {
	Error string `json:"error"`
}

// call sends one request and decodes the answer into result.
func call[T any](ctx context.Context, c client, method, path string, body any) (T, error) {
	var (
		result T
		answer errorAnswer
	)
	req := c.resty.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&answer)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return result, err
	}
	if resp.IsError() {
		return result, statusErr(resp.StatusCode(), answer.Error)
	}
	return result, nil
}

// statusErr restores the engine error kind of an HTTP error answer.
func statusErr(code int, message string) error {
	if message == "" {
		message = http.StatusText(code)
	}
	switch code {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", service.ErrAlreadyExists, message)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ledger.ErrValidation, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, message)
	case http.StatusServiceUnavailable:
		return &ledger.StoreError{Op: "remote", Err: errors.New(message)}
	default:
		return fmt.Errorf("ledger request status %d: %s", code, message)
	}
}

func seg(s string) string {
	return url.PathEscape(s)
}

func (c client) CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error) {
	return call[model.Customer](ctx, c, http.MethodPost, "/api/customers", customer)
}

func (c client) CreateInvoice(ctx context.Context, invoice model.Invoice) (model.Invoice, error) {
	return call[model.Invoice](ctx, c, http.MethodPost, "/api/invoices", invoice)
}

func (c client) GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error) {
	return call[model.Invoice](ctx, c, http.MethodGet, "/api/invoices/"+seg(invoiceID), nil)
}

type recordPaymentAnswer struct {
	Invoice model.Invoice `json:"invoice"`
	Payment model.Payment `json:"payment"`
}

func (c client) RecordPayment(ctx context.Context, invoiceID string, payment Payment) (model.Invoice, model.Payment, error) {
	answer, err := call[recordPaymentAnswer](ctx, c, http.MethodPost, "/api/invoices/"+seg(invoiceID)+"/payments", payment)
	return answer.Invoice, answer.Payment, err
}

func (c client) DeletePayment(ctx context.Context, invoiceID, paymentID string) (model.Invoice, error) {
	return call[model.Invoice](ctx, c, http.MethodDelete, "/api/invoices/"+seg(invoiceID)+"/payments/"+seg(paymentID), nil)
}

func (c client) DeleteInvoice(ctx context.Context, customerID, invoiceID string) (model.CustomerLedgerSnapshot, error) {
	return call[model.CustomerLedgerSnapshot](ctx, c, http.MethodDelete, "/api/customers/"+seg(customerID)+"/invoices/"+seg(invoiceID), nil)
}

func (c client) AllocateBulkPayment(ctx context.Context, customerID string, payment Payment) (model.BulkAllocation, error) {
	return call[model.BulkAllocation](ctx, c, http.MethodPost, "/api/customers/"+seg(customerID)+"/payments", payment)
}

func (c client) CustomerLedger(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	return call[model.CustomerLedgerSnapshot](ctx, c, http.MethodGet, "/api/customers/"+seg(customerID)+"/ledger", nil)
}

func (c client) RecalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	return call[model.CustomerLedgerSnapshot](ctx, c, http.MethodPost, "/api/customers/"+seg(customerID)+"/recalculate", nil)
}

func (c client) RecalculateCustomers(ctx context.Context, customerIDs []string) ([]model.CustomerLedgerSnapshot, error) {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: customerIDs}
	return call[[]model.CustomerLedgerSnapshot](ctx, c, http.MethodPost, "/api/customers/recalculate", body)
}

func (c client) DeletePurchasePayment(ctx context.Context, purchaseID, paymentID string) (model.Purchase, error) {
	return call[model.Purchase](ctx, c, http.MethodDelete, "/api/purchases/"+seg(purchaseID)+"/payments/"+seg(paymentID), nil)
}

func (c client) DeletePurchase(ctx context.Context, supplierID, purchaseID string) (model.SupplierLedgerSnapshot, error) {
	return call[model.SupplierLedgerSnapshot](ctx, c, http.MethodDelete, "/api/suppliers/"+seg(supplierID)+"/purchases/"+seg(purchaseID), nil)
}

func (c client) AllocateBulkSupplierPayment(ctx context.Context, supplierID string, payment Payment) (model.BulkAllocation, error) {
	return call[model.BulkAllocation](ctx, c, http.MethodPost, "/api/suppliers/"+seg(supplierID)+"/payments", payment)
}

func (c client) SupplierLedger(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	return call[model.SupplierLedgerSnapshot](ctx, c, http.MethodGet, "/api/suppliers/"+seg(supplierID)+"/ledger", nil)
}

func (c client) RecalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	return call[model.SupplierLedgerSnapshot](ctx, c, http.MethodPost, "/api/suppliers/"+seg(supplierID)+"/recalculate", nil)
}
