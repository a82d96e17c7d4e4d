// Package balance rebuilds customer and supplier balances from their raw
// document history. Callers serialize access per owner.
package balance

import (
	"context"
	"fmt"

	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/store"
)

type Balance interface {
	// Customer computes the customer's ledger without writing anything.
	Customer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error)
	// RecalculateCustomer rebuilds the ledger and persists every invoice and
	// cached aggregate that drifted from it.
	RecalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error)
	Supplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error)
	RecalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error)
}

type balance struct {
	store store.Store
}

func NewBalance(store store.Store) Balance {
	balance := balance{store: store}
	return &balance
}

func (balance *balance) Customer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	if _, err := balance.store.GetCustomer(ctx, customerID); err != nil {
		return model.CustomerLedgerSnapshot{}, fmt.Errorf("customer %s: %w", customerID, err)
	}
	invoices, err := balance.store.ListInvoicesByCustomer(ctx, customerID)
	if err != nil {
		return model.CustomerLedgerSnapshot{}, fmt.Errorf("invoices of %s: %w", customerID, err)
	}
	return ledger.RebuildCustomer(customerID, invoices), nil
}

func (balance *balance) RecalculateCustomer(ctx context.Context, customerID string) (model.CustomerLedgerSnapshot, error) {
	customer, err := balance.store.GetCustomer(ctx, customerID)
	if err != nil {
		return model.CustomerLedgerSnapshot{}, fmt.Errorf("customer %s: %w", customerID, err)
	}
	invoices, err := balance.store.ListInvoicesByCustomer(ctx, customerID)
	if err != nil {
		return model.CustomerLedgerSnapshot{}, fmt.Errorf("invoices of %s: %w", customerID, err)
	}

	stored := make(map[string]model.Document, len(invoices))
	for _, inv := range invoices {
		stored[inv.ID] = inv.Document
	}
	snapshot := ledger.RebuildCustomer(customerID, invoices)

	// Запись только изменившихся документов
	for _, inv := range invoices {
		if !ledger.DerivedChanged(stored[inv.ID], inv.Document) {
			continue
		}
		if err := balance.store.PutInvoice(ctx, inv); err != nil {
			return model.CustomerLedgerSnapshot{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
		}
	}

	history := ledger.History(snapshot.LedgerTotals)
	if ledger.HistoryChanged(customer.TransactionHistory, history) {
		customer.TransactionHistory = history
		if err := balance.store.PutCustomer(ctx, customer); err != nil {
			return model.CustomerLedgerSnapshot{}, fmt.Errorf("customer %s: %w", customerID, err)
		}
	}
	return snapshot, nil
}

func (balance *balance) Supplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	if _, err := balance.store.GetSupplier(ctx, supplierID); err != nil {
		return model.SupplierLedgerSnapshot{}, fmt.Errorf("supplier %s: %w", supplierID, err)
	}
	purchases, err := balance.store.ListPurchasesBySupplier(ctx, supplierID)
	if err != nil {
		return model.SupplierLedgerSnapshot{}, fmt.Errorf("purchases of %s: %w", supplierID, err)
	}
	return ledger.RebuildSupplier(supplierID, purchases), nil
}

func (balance *balance) RecalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	supplier, err := balance.store.GetSupplier(ctx, supplierID)
	if err != nil {
		return model.SupplierLedgerSnapshot{}, fmt.Errorf("supplier %s: %w", supplierID, err)
	}
	purchases, err := balance.store.ListPurchasesBySupplier(ctx, supplierID)
	if err != nil {
		return model.SupplierLedgerSnapshot{}, fmt.Errorf("purchases of %s: %w", supplierID, err)
	}

	stored := make(map[string]model.Document, len(purchases))
	for _, pur := range purchases {
		stored[pur.ID] = pur.Document
	}
	snapshot := ledger.RebuildSupplier(supplierID, purchases)

	for _, pur := range purchases {
		if !ledger.DerivedChanged(stored[pur.ID], pur.Document) {
			continue
		}
		if err := balance.store.PutPurchase(ctx, pur); err != nil {
			return model.SupplierLedgerSnapshot{}, fmt.Errorf("purchase %s: %w", pur.ID, err)
		}
	}

	history := ledger.History(snapshot.LedgerTotals)
	if ledger.HistoryChanged(supplier.TransactionHistory, history) {
		supplier.TransactionHistory = history
		if err := balance.store.PutSupplier(ctx, supplier); err != nil {
			return model.SupplierLedgerSnapshot{}, fmt.Errorf("supplier %s: %w", supplierID, err)
		}
	}
	return snapshot, nil
}
