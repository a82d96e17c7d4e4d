package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/bizledger/internal/model"
)

// RecalculateCustomers rebuilds several customers in parallel, at most
// RecalcWorkers at a time. The first failure cancels the rest.
func (service *service) RecalculateCustomers(ctx context.Context, customerIDs []string) ([]model.CustomerLedgerSnapshot, error) {
	snapshots := make([]model.CustomerLedgerSnapshot, len(customerIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(service.cfg.RecalcWorkers)
	for i, id := range customerIDs {
		g.Go(func() error {
			snapshot, err := service.RecalculateCustomer(ctx, id)
			if err != nil {
				return err
			}
			snapshots[i] = snapshot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// RecalculateSuppliers is RecalculateCustomers for suppliers.
func (service *service) RecalculateSuppliers(ctx context.Context, supplierIDs []string) ([]model.SupplierLedgerSnapshot, error) {
	snapshots := make([]model.SupplierLedgerSnapshot, len(supplierIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(service.cfg.RecalcWorkers)
	for i, id := range supplierIDs {
		g.Go(func() error {
			snapshot, err := service.RecalculateSupplier(ctx, id)
			if err != nil {
				return err
			}
			snapshots[i] = snapshot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
