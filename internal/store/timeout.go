package store

import (
	"context"
	"time"

	"github.com/iurnickita/bizledger/internal/model"
)

// WithTimeout bounds every call of next by d.
func WithTimeout(next Store, d time.Duration) Store {
	return &timeoutStore{next: next, timeout: d}
}

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

func (s *timeoutStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

func (s *timeoutStore) GetInvoice(ctx context.Context, id string) (model.Invoice, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.GetInvoice(ctx, id)
}

func (s *timeoutStore) InsertInvoice(ctx context.Context, invoice model.Invoice) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.InsertInvoice(ctx, invoice)
}

func (s *timeoutStore) PutInvoice(ctx context.Context, invoice model.Invoice) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.PutInvoice(ctx, invoice)
}

func (s *timeoutStore) DeleteInvoice(ctx context.Context, id string) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.DeleteInvoice(ctx, id)
}

func (s *timeoutStore) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]model.Invoice, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.ListInvoicesByCustomer(ctx, customerID)
}

func (s *timeoutStore) GetPurchase(ctx context.Context, id string) (model.Purchase, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.GetPurchase(ctx, id)
}

func (s *timeoutStore) InsertPurchase(ctx context.Context, purchase model.Purchase) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.InsertPurchase(ctx, purchase)
}

func (s *timeoutStore) PutPurchase(ctx context.Context, purchase model.Purchase) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.PutPurchase(ctx, purchase)
}

func (s *timeoutStore) DeletePurchase(ctx context.Context, id string) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.DeletePurchase(ctx, id)
}

func (s *timeoutStore) ListPurchasesBySupplier(ctx context.Context, supplierID string) ([]model.Purchase, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.ListPurchasesBySupplier(ctx, supplierID)
}

func (s *timeoutStore) GetCustomer(ctx context.Context, id string) (model.Customer, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.GetCustomer(ctx, id)
}

func (s *timeoutStore) InsertCustomer(ctx context.Context, customer model.Customer) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.InsertCustomer(ctx, customer)
}

func (s *timeoutStore) PutCustomer(ctx context.Context, customer model.Customer) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.PutCustomer(ctx, customer)
}

func (s *timeoutStore) GetSupplier(ctx context.Context, id string) (model.Supplier, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.GetSupplier(ctx, id)
}

func (s *timeoutStore) InsertSupplier(ctx context.Context, supplier model.Supplier) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.InsertSupplier(ctx, supplier)
}

func (s *timeoutStore) PutSupplier(ctx context.Context, supplier model.Supplier) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.next.PutSupplier(ctx, supplier)
}

func (s *timeoutStore) Close() error {
	return s.next.Close()
}
