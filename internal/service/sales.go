package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
)

func (service *service) CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error) {
	id, err := newParty(customer.ID, customer.Name)
	if err != nil {
		return model.Customer{}, err
	}
	customer.ID = id
	customer.TransactionHistory = model.TransactionHistory{TotalSpent: money.Zero}

	if err := service.store.InsertCustomer(ctx, customer); err != nil {
		return model.Customer{}, storeErr("customer "+customer.ID, err)
	}
	return customer, nil
}

func (service *service) CreateInvoice(ctx context.Context, invoice model.Invoice) (model.Invoice, error) {
	id, err := service.documentID(invoice.ID)
	if err != nil {
		return model.Invoice{}, err
	}
	invoice.ID = id
	if invoice.CustomerID == "" {
		return model.Invoice{}, ledger.Validationf("invoice %s has no customer", invoice.ID)
	}
	if len(invoice.Payments) != 0 {
		return model.Invoice{}, ledger.Validationf("invoice %s must be created without payments", invoice.ID)
	}
	if invoice.Date.IsZero() {
		invoice.Date = service.now()
	}
	invoice.Status = ""
	if err := ledger.ValidateDocument(invoice.Document, model.PaymentTermFull); err != nil {
		return model.Invoice{}, err
	}
	ledger.RecalculateInvoice(&invoice)

	unlock := service.locks.Lock(customerKey(invoice.CustomerID))
	defer unlock()

	if _, err := service.store.GetCustomer(ctx, invoice.CustomerID); err != nil {
		return model.Invoice{}, storeErr("customer "+invoice.CustomerID, err)
	}
	if err := service.store.InsertInvoice(ctx, invoice); err != nil {
		return model.Invoice{}, storeErr("invoice "+invoice.ID, err)
	}
	if _, err := service.recalculateCustomer(ctx, invoice.CustomerID); err != nil {
		return model.Invoice{}, err
	}

	service.zaplog.Info("invoice created",
		zap.String("customer", invoice.CustomerID),
		zap.String("invoice", invoice.ID),
		zap.String("grand_total", invoice.GrandTotal.String()),
	)
	return invoice, nil
}

func (service *service) GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error) {
	invoice, err := service.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, storeErr("invoice "+invoiceID, err)
	}
	return invoice, nil
}

// lockInvoice takes the lock of the invoice's customer and reads the invoice
// again under it.
func (service *service) lockInvoice(ctx context.Context, invoiceID string) (model.Invoice, func(), error) {
	invoice, err := service.GetInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, nil, err
	}
	unlock := service.locks.Lock(customerKey(invoice.CustomerID))

	invoice, err = service.GetInvoice(ctx, invoiceID)
	if err != nil {
		unlock()
		return model.Invoice{}, nil, err
	}
	return invoice, unlock, nil
}

func (service *service) UpdateInvoiceItems(ctx context.Context, invoiceID string, update DocumentUpdate) (model.Invoice, error) {
	invoice, unlock, err := service.lockInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	defer unlock()

	if invoice.Status == model.StatusCanceled {
		return model.Invoice{}, ledger.Validationf("invoice %s is canceled", invoiceID)
	}
	invoice.Items = update.Items
	invoice.Discount = update.Discount
	invoice.IsGSTInvoice = update.IsGSTInvoice
	if err := ledger.ValidateDocument(invoice.Document, model.PaymentTermFull); err != nil {
		return model.Invoice{}, err
	}
	ledger.RecalculateInvoice(&invoice)
	if invoice.BalanceDue.IsNegative() {
		return model.Invoice{}, ledger.Validationf("new total %s of %s is below the amount already paid", invoice.GrandTotal, invoiceID)
	}

	if err := service.store.PutInvoice(ctx, invoice); err != nil {
		return model.Invoice{}, storeErr("invoice "+invoiceID, err)
	}
	if _, err := service.recalculateCustomer(ctx, invoice.CustomerID); err != nil {
		return model.Invoice{}, err
	}
	return invoice, nil
}

func (service *service) CancelInvoice(ctx context.Context, invoiceID string) (model.Invoice, error) {
	invoice, unlock, err := service.lockInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	defer unlock()

	if err := ledger.Cancel(&invoice.Document); err != nil {
		return model.Invoice{}, err
	}
	ledger.RecalculateInvoice(&invoice)
	if err := service.store.PutInvoice(ctx, invoice); err != nil {
		return model.Invoice{}, storeErr("invoice "+invoiceID, err)
	}
	if _, err := service.recalculateCustomer(ctx, invoice.CustomerID); err != nil {
		return model.Invoice{}, err
	}

	service.zaplog.Info("invoice canceled",
		zap.String("customer", invoice.CustomerID),
		zap.String("invoice", invoiceID),
	)
	return invoice, nil
}

func (service *service) RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest) (model.Invoice, model.Payment, error) {
	invoice, unlock, err := service.lockInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, model.Payment{}, err
	}
	defer unlock()

	payment := model.Payment{
		ID:     uuid.NewString(),
		Amount: req.Amount,
		Date:   service.paymentDate(req.Date),
		Mode:   req.Mode,
		Notes:  req.Notes,
	}
	if err := ledger.RecordPayment(&invoice, payment); err != nil {
		return model.Invoice{}, model.Payment{}, err
	}
	if err := service.store.PutInvoice(ctx, invoice); err != nil {
		return model.Invoice{}, model.Payment{}, storeErr("invoice "+invoiceID, err)
	}

	service.zaplog.Info("payment recorded",
		zap.String("customer", invoice.CustomerID),
		zap.String("invoice", invoiceID),
		zap.String("payment", payment.ID),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance_due", invoice.BalanceDue.String()),
	)
	return invoice, payment, nil
}

func (service *service) DeletePayment(ctx context.Context, invoiceID string, paymentID string) (model.Invoice, error) {
	invoice, unlock, err := service.lockInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	defer unlock()

	removed, err := ledger.DeletePayment(&invoice, paymentID)
	if err != nil {
		return model.Invoice{}, err
	}
	if err := service.store.PutInvoice(ctx, invoice); err != nil {
		return model.Invoice{}, storeErr("invoice "+invoiceID, err)
	}
	// balances are rebuilt from history, never patched
	if _, err := service.recalculateCustomer(ctx, invoice.CustomerID); err != nil {
		return model.Invoice{}, err
	}
	invoice, err = service.GetInvoice(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}

	service.zaplog.Info("payment deleted",
		zap.String("customer", invoice.CustomerID),
		zap.String("invoice", invoiceID),
		zap.String("payment", paymentID),
		zap.String("amount", removed.Amount.String()),
	)
	return invoice, nil
}

func (service *service) DeleteInvoice(ctx context.Context, customerID string, invoiceID string) (model.CustomerLedgerSnapshot, error) {
	unlock := service.locks.Lock(customerKey(customerID))
	defer unlock()

	invoice, err := service.GetInvoice(ctx, invoiceID)
	if err != nil {
		return model.CustomerLedgerSnapshot{}, err
	}
	if invoice.CustomerID != customerID {
		return model.CustomerLedgerSnapshot{}, ledger.NotFoundf("invoice %s of customer %s", invoiceID, customerID)
	}
	if err := service.store.DeleteInvoice(ctx, invoiceID); err != nil {
		return model.CustomerLedgerSnapshot{}, storeErr("invoice "+invoiceID, err)
	}

	service.zaplog.Info("invoice deleted",
		zap.String("customer", customerID),
		zap.String("invoice", invoiceID),
	)
	return service.recalculateCustomer(ctx, customerID)
}

func (service *service) AllocateBulkPayment(ctx context.Context, customerID string, req PaymentRequest) (model.BulkAllocation, error) {
	if err := checkBulkRequest(req); err != nil {
		return model.BulkAllocation{}, err
	}
	unlock := service.locks.Lock(customerKey(customerID))
	defer unlock()

	if _, err := service.store.GetCustomer(ctx, customerID); err != nil {
		return model.BulkAllocation{}, storeErr("customer "+customerID, err)
	}
	invoices, err := service.store.ListInvoicesByCustomer(ctx, customerID)
	if err != nil {
		return model.BulkAllocation{}, storeErr("invoices of "+customerID, err)
	}
	plan, err := ledger.PlanAllocation(req.Amount, ledger.OutstandingInvoices(invoices))
	if err != nil {
		return model.BulkAllocation{}, err
	}

	byID := make(map[string]model.Invoice, len(invoices))
	for _, invoice := range invoices {
		byID[invoice.ID] = invoice
	}

	result := newBulkAllocation(customerID, req)
	for _, slice := range plan.Slices {
		invoice := byID[slice.ID]
		payment := model.Payment{
			ID:     uuid.NewString(),
			Amount: slice.Amount,
			Date:   service.paymentDate(req.Date),
			Mode:   req.Mode,
			Notes:  bulkNotes(result.Reference, req.Notes),
		}
		err := ledger.RecordPayment(&invoice, payment)
		if err == nil {
			err = storeErr("invoice "+invoice.ID, service.store.PutInvoice(ctx, invoice))
		}
		if err != nil {
			result.fail(slice.ID, slice.Amount, err)
			service.zaplog.Warn("bulk payment stopped",
				zap.String("customer", customerID),
				zap.String("reference", result.Reference),
				zap.String("invoice", slice.ID),
				zap.Error(err),
			)
			break
		}
		result.add(model.Allocation{
			InvoiceID:       invoice.ID,
			PaymentID:       payment.ID,
			AmountAllocated: slice.Amount,
			BalanceDue:      invoice.BalanceDue,
			Status:          invoice.Status,
		})
	}

	service.zaplog.Info("bulk payment allocated",
		zap.String("customer", customerID),
		zap.String("reference", result.Reference),
		zap.String("allocated", result.TotalAllocated.String()),
		zap.String("unallocated", result.UnallocatedRemainder.String()),
	)
	return result.BulkAllocation, nil
}

func (service *service) CustomerLedger(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	unlock := service.locks.Lock(customerKey(customerID))
	defer unlock()

	snapshot, err := service.balance.Customer(ctx, customerID)
	if err != nil {
		return model.CustomerLedgerSnapshot{}, storeErr("customer "+customerID, err)
	}
	return snapshot, nil
}

func (service *service) RecalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	unlock := service.locks.Lock(customerKey(customerID))
	defer unlock()

	return service.recalculateCustomer(ctx, customerID)
}

// recalculateCustomer expects the customer's lock to be held.
func (service *service) recalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	snapshot, err := service.balance.RecalculateCustomer(ctx, customerID)
	if err != nil {
		return model.CustomerLedgerSnapshot{}, storeErr("customer "+customerID, err)
	}
	return snapshot, nil
}
