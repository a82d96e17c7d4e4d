package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/theplant/luhn"
	"go.uber.org/zap"

	"github.com/iurnickita/bizledger/internal/balance"
	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/service/config"
	"github.com/iurnickita/bizledger/internal/store"
)

// Service is the ledger engine. Every mutation of one customer's invoices, or
// one supplier's purchases, runs under that owner's lock; different owners
// proceed in parallel.
type Service interface {
	CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error)
	CreateInvoice(ctx context.Context, invoice model.Invoice) (model.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error)
	UpdateInvoiceItems(ctx context.Context, invoiceID string, update DocumentUpdate) (model.Invoice, error)
	CancelInvoice(ctx context.Context, invoiceID string) (model.Invoice, error)
	RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest) (model.Invoice, model.Payment, error)
	DeletePayment(ctx context.Context, invoiceID string, paymentID string) (model.Invoice, error)
	AllocateBulkPayment(ctx context.Context, customerID string, req PaymentRequest) (model.BulkAllocation, error)
	DeleteInvoice(ctx context.Context, customerID string, invoiceID string) (model.CustomerLedgerSnapshot, error)
	CustomerLedger(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error)
	RecalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error)
	RecalculateCustomers(ctx context.Context, customerIDs []string) ([]model.CustomerLedgerSnapshot, error)

	CreateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error)
	CreatePurchase(ctx context.Context, purchase model.Purchase) (model.Purchase, error)
	GetPurchase(ctx context.Context, purchaseID string) (model.Purchase, error)
	UpdatePurchaseItems(ctx context.Context, purchaseID string, update DocumentUpdate) (model.Purchase, error)
	CancelPurchase(ctx context.Context, purchaseID string) (model.Purchase, error)
	RecordPurchasePayment(ctx context.Context, purchaseID string, req PaymentRequest) (model.Purchase, model.PurchasePayment, error)
	DeletePurchasePayment(ctx context.Context, purchaseID string, paymentID string) (model.Purchase, error)
	AllocateBulkSupplierPayment(ctx context.Context, supplierID string, req PaymentRequest) (model.BulkAllocation, error)
	DeletePurchase(ctx context.Context, supplierID string, purchaseID string) (model.SupplierLedgerSnapshot, error)
	SupplierLedger(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error)
	RecalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error)
	RecalculateSuppliers(ctx context.Context, supplierIDs []string) ([]model.SupplierLedgerSnapshot, error)
}

// PaymentRequest describes money received from a customer or paid to a supplier.
// A zero Date means now.
type PaymentRequest struct {
	Amount decimal.Decimal
	Date   time.Time
	Mode   string
	Notes  string
}

// DocumentUpdate replaces the priced part of an invoice or purchase.
type DocumentUpdate struct {
	Items        []model.Item
	Discount     decimal.Decimal
	IsGSTInvoice bool
}

var (
	// ErrAlreadyExists is a validation error for a duplicate id.
	ErrAlreadyExists = fmt.Errorf("%w: already exists", ledger.ErrValidation)
)

const defaultRecalcWorkers = 4

type service struct {
	cfg     config.Config
	store   store.Store
	balance balance.Balance
	locks   *keyedMutex
	zaplog  *zap.Logger
	now     func() time.Time
}

func NewService(cfg config.Config, store store.Store, zaplog *zap.Logger) (Service, error) {
	if cfg.RecalcWorkers <= 0 {
		cfg.RecalcWorkers = defaultRecalcWorkers
	}
	if zaplog == nil {
		zaplog = zap.NewNop()
	}

	service := service{
		cfg:     cfg,
		store:   store,
		balance: balance.NewBalance(store),
		locks:   newKeyedMutex(),
		zaplog:  zaplog,
		now:     func() time.Time { return time.Now().UTC() },
	}

	return &service, nil
}

// storeErr maps a store failure to the engine's error kinds. what names the record.
func storeErr(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrStore):
		return err
	case errors.Is(err, store.ErrNoRows):
		return ledger.NotFoundf("%s", what)
	case errors.Is(err, store.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", ErrAlreadyExists, what)
	default:
		return &ledger.StoreError{Op: what, Err: err}
	}
}

// documentID checks or assigns the id of a new invoice or purchase.
func (service *service) documentID(id string) (string, error) {
	if !service.cfg.LuhnInvoiceNumbers {
		if id == "" {
			return uuid.NewString(), nil
		}
		return id, nil
	}
	// Проверка по алгоритму Луна
	number, err := strconv.Atoi(id)
	if err != nil || number <= 0 || !luhn.Valid(number) {
		return "", ledger.Validationf("document number %q fails the Luhn check", id)
	}
	return id, nil
}

func (service *service) paymentDate(date time.Time) time.Time {
	if date.IsZero() {
		return service.now()
	}
	return date
}

func newParty(id, name string) (string, error) {
	if name == "" {
		return "", ledger.Validationf("name is empty")
	}
	if id == "" {
		id = uuid.NewString()
	}
	return id, nil
}
