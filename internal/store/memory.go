package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/iurnickita/bizledger/internal/model"
)

// MemoryStore keeps records in process memory. Records are copied on the way in
// and out so callers never share slices with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	invoices  map[string]model.Invoice
	purchases map[string]model.Purchase
	customers map[string]model.Customer
	suppliers map[string]model.Supplier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices:  make(map[string]model.Invoice),
		purchases: make(map[string]model.Purchase),
		customers: make(map[string]model.Customer),
		suppliers: make(map[string]model.Supplier),
	}
}

func cloneDocument(doc model.Document) model.Document {
	doc.Items = slices.Clone(doc.Items)
	if doc.DueDate != nil {
		due := *doc.DueDate
		doc.DueDate = &due
	}
	return doc
}

func cloneInvoice(inv model.Invoice) model.Invoice {
	inv.Document = cloneDocument(inv.Document)
	inv.Payments = slices.Clone(inv.Payments)
	return inv
}

func clonePurchase(pur model.Purchase) model.Purchase {
	pur.Document = cloneDocument(pur.Document)
	pur.Payments = slices.Clone(pur.Payments)
	return pur
}

func cloneHistory(h model.TransactionHistory) model.TransactionHistory {
	if h.LastPurchaseDate != nil {
		last := *h.LastPurchaseDate
		h.LastPurchaseDate = &last
	}
	return h
}

// Продажи

func (s *MemoryStore) GetInvoice(ctx context.Context, id string) (model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return model.Invoice{}, ErrNoRows
	}
	return cloneInvoice(inv), nil
}

func (s *MemoryStore) InsertInvoice(ctx context.Context, invoice model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[invoice.ID]; ok {
		return ErrAlreadyExists
	}
	s.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (s *MemoryStore) PutInvoice(ctx context.Context, invoice model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (s *MemoryStore) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return ErrNoRows
	}
	delete(s.invoices, id)
	return nil
}

func (s *MemoryStore) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var invoices []model.Invoice
	for _, inv := range s.invoices {
		if inv.CustomerID == customerID {
			invoices = append(invoices, cloneInvoice(inv))
		}
	}
	slices.SortFunc(invoices, func(a, b model.Invoice) int { return cmp.Compare(a.ID, b.ID) })
	return invoices, nil
}

// Закупки

func (s *MemoryStore) GetPurchase(ctx context.Context, id string) (model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pur, ok := s.purchases[id]
	if !ok {
		return model.Purchase{}, ErrNoRows
	}
	return clonePurchase(pur), nil
}

func (s *MemoryStore) InsertPurchase(ctx context.Context, purchase model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[purchase.ID]; ok {
		return ErrAlreadyExists
	}
	s.purchases[purchase.ID] = clonePurchase(purchase)
	return nil
}

func (s *MemoryStore) PutPurchase(ctx context.Context, purchase model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases[purchase.ID] = clonePurchase(purchase)
	return nil
}

func (s *MemoryStore) DeletePurchase(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[id]; !ok {
		return ErrNoRows
	}
	delete(s.purchases, id)
	return nil
}

func (s *MemoryStore) ListPurchasesBySupplier(ctx context.Context, supplierID string) ([]model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var purchases []model.Purchase
	for _, pur := range s.purchases {
		if pur.SupplierID == supplierID {
			purchases = append(purchases, clonePurchase(pur))
		}
	}
	slices.SortFunc(purchases, func(a, b model.Purchase) int { return cmp.Compare(a.ID, b.ID) })
	return purchases, nil
}

// Контрагенты

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return model.Customer{}, ErrNoRows
	}
	customer.TransactionHistory = cloneHistory(customer.TransactionHistory)
	return customer, nil
}

func (s *MemoryStore) InsertCustomer(ctx context.Context, customer model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; ok {
		return ErrAlreadyExists
	}
	customer.TransactionHistory = cloneHistory(customer.TransactionHistory)
	s.customers[customer.ID] = customer
	return nil
}

func (s *MemoryStore) PutCustomer(ctx context.Context, customer model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer.TransactionHistory = cloneHistory(customer.TransactionHistory)
	s.customers[customer.ID] = customer
	return nil
}

func (s *MemoryStore) GetSupplier(ctx context.Context, id string) (model.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return model.Supplier{}, ErrNoRows
	}
	supplier.TransactionHistory = cloneHistory(supplier.TransactionHistory)
	return supplier, nil
}

func (s *MemoryStore) InsertSupplier(ctx context.Context, supplier model.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[supplier.ID]; ok {
		return ErrAlreadyExists
	}
	supplier.TransactionHistory = cloneHistory(supplier.TransactionHistory)
	s.suppliers[supplier.ID] = supplier
	return nil
}

func (s *MemoryStore) PutSupplier(ctx context.Context, supplier model.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier.TransactionHistory = cloneHistory(supplier.TransactionHistory)
	s.suppliers[supplier.ID] = supplier
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
