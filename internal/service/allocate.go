package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/ledger"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
)

func checkBulkRequest(req PaymentRequest) error {
	if req.Amount.Sign() <= 0 {
		return ledger.Validationf("payment amount must be positive, got %s", req.Amount)
	}
	if err := money.Check(req.Amount); err != nil {
		return ledger.Validationf("payment amount: %v", err)
	}
	if req.Mode == "" {
		return ledger.Validationf("payment mode is empty")
	}
	return nil
}

func bulkNotes(reference, notes string) string {
	if notes == "" {
		return "bulk payment " + reference
	}
	return notes + " (bulk payment " + reference + ")"
}

// bulkResult accumulates committed allocations of one bulk payment.
type bulkResult struct {
	model.BulkAllocation
}

func newBulkAllocation(ownerID string, req PaymentRequest) *bulkResult {
	return &bulkResult{model.BulkAllocation{
		Reference:            uuid.NewString(),
		OwnerID:              ownerID,
		PaymentAmount:        req.Amount,
		Allocations:          []model.Allocation{},
		TotalAllocated:       decimal.Zero,
		UnallocatedRemainder: req.Amount,
	}}
}

func (r *bulkResult) add(a model.Allocation) {
	r.Allocations = append(r.Allocations, a)
	r.TotalAllocated = r.TotalAllocated.Add(a.AmountAllocated)
	r.UnallocatedRemainder = r.PaymentAmount.Sub(r.TotalAllocated)
}

func (r *bulkResult) fail(documentID string, amount decimal.Decimal, err error) {
	r.Failure = &model.AllocationFailure{
		InvoiceID: documentID,
		Amount:    amount,
		Error:     err.Error(),
	}
}
