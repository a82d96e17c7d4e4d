package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
)

func (service *service) CreateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error) {
	id, err := newParty(supplier.ID, supplier.Name)
	if err != nil {
		return model.Supplier{}, err
	}
	supplier.ID = id
	supplier.TransactionHistory = model.TransactionHistory{TotalSpent: money.Zero}

	if err := service.store.InsertSupplier(ctx, supplier); err != nil {
		return model.Supplier{}, storeErr("supplier "+supplier.ID, err)
	}
	return supplier, nil
}

func (service *service) CreatePurchase(ctx context.Context, purchase model.Purchase) (model.Purchase, error) {
	id, err := service.documentID(purchase.ID)
	if err != nil {
		return model.Purchase{}, err
	}
	purchase.ID = id
	if purchase.SupplierID == "" {
		return model.Purchase{}, ledger.Validationf("purchase %s has no supplier", purchase.ID)
	}
	if len(purchase.Payments) != 0 {
		return model.Purchase{}, ledger.Validationf("purchase %s must be created without payments", purchase.ID)
	}
	if purchase.Date.IsZero() {
		purchase.Date = service.now()
	}
	purchase.Status = ""
	if err := ledger.ValidateDocument(purchase.Document, model.PaymentTermPaid); err != nil {
		return model.Purchase{}, err
	}
	ledger.RecalculatePurchase(&purchase)

	unlock := service.locks.Lock(supplierKey(purchase.SupplierID))
	defer unlock()

	if _, err := service.store.GetSupplier(ctx, purchase.SupplierID); err != nil {
		return model.Purchase{}, storeErr("supplier "+purchase.SupplierID, err)
	}
	if err := service.store.InsertPurchase(ctx, purchase); err != nil {
		return model.Purchase{}, storeErr("purchase "+purchase.ID, err)
	}
	if _, err := service.recalculateSupplier(ctx, purchase.SupplierID); err != nil {
		return model.Purchase{}, err
	}

	service.zaplog.Info("purchase created",
		zap.String("supplier", purchase.SupplierID),
		zap.String("purchase", purchase.ID),
		zap.String("grand_total", purchase.GrandTotal.String()),
	)
	return purchase, nil
}

func (service *service) GetPurchase(ctx context.Context, purchaseID string) (model.Purchase, error) {
	purchase, err := service.store.GetPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, storeErr("purchase "+purchaseID, err)
	}
	return purchase, nil
}

func (service *service) lockPurchase(ctx context.Context, purchaseID string) (model.Purchase, func(), error) {
	purchase, err := service.GetPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, nil, err
	}
	unlock := service.locks.Lock(supplierKey(purchase.SupplierID))

	purchase, err = service.GetPurchase(ctx, purchaseID)
	if err != nil {
		unlock()
		return model.Purchase{}, nil, err
	}
	return purchase, unlock, nil
}

func (service *service) UpdatePurchaseItems(ctx context.Context, purchaseID string, update DocumentUpdate) (model.Purchase, error) {
	purchase, unlock, err := service.lockPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, err
	}
	defer unlock()

	if purchase.Status == model.StatusCanceled {
		return model.Purchase{}, ledger.Validationf("purchase %s is canceled", purchaseID)
	}
	purchase.Items = update.Items
	purchase.Discount = update.Discount
	purchase.IsGSTInvoice = update.IsGSTInvoice
	if err := ledger.ValidateDocument(purchase.Document, model.PaymentTermPaid); err != nil {
		return model.Purchase{}, err
	}
	ledger.RecalculatePurchase(&purchase)
	if purchase.BalanceDue.IsNegative() {
		return model.Purchase{}, ledger.Validationf("new total %s of %s is below the amount already paid", purchase.GrandTotal, purchaseID)
	}

	if err := service.store.PutPurchase(ctx, purchase); err != nil {
		return model.Purchase{}, storeErr("purchase "+purchaseID, err)
	}
	if _, err := service.recalculateSupplier(ctx, purchase.SupplierID); err != nil {
		return model.Purchase{}, err
	}
	return purchase, nil
}

func (service *service) CancelPurchase(ctx context.Context, purchaseID string) (model.Purchase, error) {
	purchase, unlock, err := service.lockPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, err
	}
	defer unlock()

	if err := ledger.Cancel(&purchase.Document); err != nil {
		return model.Purchase{}, err
	}
	ledger.RecalculatePurchase(&purchase)
	if err := service.store.PutPurchase(ctx, purchase); err != nil {
		return model.Purchase{}, storeErr("purchase "+purchaseID, err)
	}
	if _, err := service.recalculateSupplier(ctx, purchase.SupplierID); err != nil {
		return model.Purchase{}, err
	}
	return purchase, nil
}

func (service *service) RecordPurchasePayment(ctx context.Context, purchaseID string, req PaymentRequest) (model.Purchase, model.PurchasePayment, error) {
	purchase, unlock, err := service.lockPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, model.PurchasePayment{}, err
	}
	defer unlock()

	payment := model.PurchasePayment{
		ID:     uuid.NewString(),
		Amount: req.Amount,
		Date:   service.paymentDate(req.Date),
		Mode:   req.Mode,
		Notes:  req.Notes,
	}
	if err := ledger.RecordPurchasePayment(&purchase, payment); err != nil {
		return model.Purchase{}, model.PurchasePayment{}, err
	}
	if err := service.store.PutPurchase(ctx, purchase); err != nil {
		return model.Purchase{}, model.PurchasePayment{}, storeErr("purchase "+purchaseID, err)
	}

	service.zaplog.Info("purchase payment recorded",
		zap.String("supplier", purchase.SupplierID),
		zap.String("purchase", purchaseID),
		zap.String("payment", payment.ID),
		zap.String("amount", payment.Amount.String()),
	)
	return purchase, payment, nil
}

func (service *service) DeletePurchasePayment(ctx context.Context, purchaseID string, paymentID string) (model.Purchase, error) {
	purchase, unlock, err := service.lockPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, err
	}
	defer unlock()

	if _, err := ledger.DeletePurchasePayment(&purchase, paymentID); err != nil {
		return model.Purchase{}, err
	}
	if err := service.store.PutPurchase(ctx, purchase); err != nil {
		return model.Purchase{}, storeErr("purchase "+purchaseID, err)
	}
	if _, err := service.recalculateSupplier(ctx, purchase.SupplierID); err != nil {
		return model.Purchase{}, err
	}

	service.zaplog.Info("purchase payment deleted",
		zap.String("supplier", purchase.SupplierID),
		zap.String("purchase", purchaseID),
		zap.String("payment", paymentID),
	)
	return service.GetPurchase(ctx, purchaseID)
}

func (service *service) DeletePurchase(ctx context.Context, supplierID string, purchaseID string) (model.SupplierLedgerSnapshot, error) {
	unlock := service.locks.Lock(supplierKey(supplierID))
	defer unlock()

	purchase, err := service.GetPurchase(ctx, purchaseID)
	if err != nil {
		return model.SupplierLedgerSnapshot{}, err
	}
	if purchase.SupplierID != supplierID {
		return model.SupplierLedgerSnapshot{}, ledger.NotFoundf("purchase %s of supplier %s", purchaseID, supplierID)
	}
	if err := service.store.DeletePurchase(ctx, purchaseID); err != nil {
		return model.SupplierLedgerSnapshot{}, storeErr("purchase "+purchaseID, err)
	}

	service.zaplog.Info("purchase deleted",
		zap.String("supplier", supplierID),
		zap.String("purchase", purchaseID),
	)
	return service.recalculateSupplier(ctx, supplierID)
}

func (service *service) AllocateBulkSupplierPayment(ctx context.Context, supplierID string, req PaymentRequest) (model.BulkAllocation, error) {
	if err := checkBulkRequest(req); err != nil {
		return model.BulkAllocation{}, err
	}
	unlock := service.locks.Lock(supplierKey(supplierID))
	defer unlock()

	if _, err := service.store.GetSupplier(ctx, supplierID); err != nil {
		return model.BulkAllocation{}, storeErr("supplier "+supplierID, err)
	}
	purchases, err := service.store.ListPurchasesBySupplier(ctx, supplierID)
	if err != nil {
		return model.BulkAllocation{}, storeErr("purchases of "+supplierID, err)
	}
	plan, err := ledger.PlanAllocation(req.Amount, ledger.OutstandingPurchases(purchases))
	if err != nil {
		return model.BulkAllocation{}, err
	}

	byID := make(map[string]model.Purchase, len(purchases))
	for _, purchase := range purchases {
		byID[purchase.ID] = purchase
	}

	result := newBulkAllocation(supplierID, req)
	for _, slice := range plan.Slices {
		purchase := byID[slice.ID]
		payment := model.PurchasePayment{
			ID:     uuid.NewString(),
			Amount: slice.Amount,
			Date:   service.paymentDate(req.Date),
			Mode:   req.Mode,
			Notes:  bulkNotes(result.Reference, req.Notes),
		}
		err := ledger.RecordPurchasePayment(&purchase, payment)
		if err == nil {
			err = storeErr("purchase "+purchase.ID, service.store.PutPurchase(ctx, purchase))
		}
		if err != nil {
			result.fail(slice.ID, slice.Amount, err)
			service.zaplog.Warn("bulk supplier payment stopped",
				zap.String("supplier", supplierID),
				zap.String("reference", result.Reference),
				zap.String("purchase", slice.ID),
				zap.Error(err),
			)
			break
		}
		result.add(model.Allocation{
			InvoiceID:       purchase.ID,
			PaymentID:       payment.ID,
			AmountAllocated: slice.Amount,
			BalanceDue:      purchase.BalanceDue,
			Status:          purchase.Status,
		})
	}

	service.zaplog.Info("bulk supplier payment allocated",
		zap.String("supplier", supplierID),
		zap.String("reference", result.Reference),
		zap.String("allocated", result.TotalAllocated.String()),
		zap.String("unallocated", result.UnallocatedRemainder.String()),
	)
	return result.BulkAllocation, nil
}

func (service *service) SupplierLedger(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	unlock := service.locks.Lock(supplierKey(supplierID))
	defer unlock()

	snapshot, err := service.balance.Supplier(ctx, supplierID)
	if err != nil {
		return model.SupplierLedgerSnapshot{}, storeErr("supplier "+supplierID, err)
	}
	return snapshot, nil
}

func (service *service) RecalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	unlock := service.locks.Lock(supplierKey(supplierID))
	defer unlock()

	return service.recalculateSupplier(ctx, supplierID)
}

// recalculateSupplier expects the supplier's lock to be held.
func (service *service) recalculateSupplier(ctx context.Context, supplierID string) (model.SupplierLedgerSnapshot, error) {
	snapshot, err := service.balance.RecalculateSupplier(ctx, supplierID)
	if err != nil {
		return model.SupplierLedgerSnapshot{}, storeErr("supplier "+supplierID, err)
	}
	return snapshot, nil
}
