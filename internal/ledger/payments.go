package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
)

// Payable is a payment owned by an invoice or a purchase.
type Payable interface {
	model.Payment | model.PurchasePayment
	PaymentID() string
	PaidAmount() decimal.Decimal
	PaymentMode() string
}

// Paid sums payment amounts. A nil list is empty.
func Paid[P Payable](payments []P) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.PaidAmount())
	}
	return total
}

func appendPayment[P Payable](doc *model.Document, payments []P, p P) ([]P, error) {
	derive(doc, payments)

	if doc.Status == model.StatusCanceled {
		return payments, Validationf("document %s is canceled", doc.ID)
	}
	amount := p.PaidAmount()
	if amount.Sign() <= 0 {
		return payments, Validationf("payment amount must be positive, got %s", amount)
	}
	if err := money.Check(amount); err != nil {
		return payments, Validationf("payment amount: %v", err)
	}
	// paying exactly the balance is allowed
	if amount.GreaterThan(doc.BalanceDue) {
		return payments, Validationf("payment %s exceeds balance due %s on %s", amount, doc.BalanceDue, doc.ID)
	}
	if p.PaymentID() == "" {
		return payments, Validationf("payment id is empty")
	}
	if p.PaymentMode() == "" {
		return payments, Validationf("payment mode is empty")
	}
	for _, existing := range payments {
		if existing.PaymentID() == p.PaymentID() {
			return payments, Validationf("payment %s already recorded on %s", p.PaymentID(), doc.ID)
		}
	}

	next := make([]P, 0, len(payments)+1)
	next = append(next, payments...)
	next = append(next, p)
	derive(doc, next)
	return next, nil
}

func removePayment[P Payable](doc *model.Document, payments []P, paymentID string) ([]P, P, error) {
	idx := -1
	for i, p := range payments {
		if p.PaymentID() == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		var zero P
		return payments, zero, NotFoundf("payment %s on %s", paymentID, doc.ID)
	}

	removed := payments[idx]
	next := make([]P, 0, len(payments)-1)
	next = append(next, payments[:idx]...)
	next = append(next, payments[idx+1:]...)
	derive(doc, next)
	return next, removed, nil
}

// RecordPayment appends p to inv and re-derives its balance and status.
// It fails with ErrValidation when the amount is not positive or exceeds the balance due.
func RecordPayment(inv *model.Invoice, p model.Payment) error {
	payments, err := appendPayment(&inv.Document, inv.Payments, p)
	if err != nil {
		return err
	}
	inv.Payments = payments
	return nil
}

// DeletePayment removes a payment from inv and re-derives its balance from the
// remaining history.
func DeletePayment(inv *model.Invoice, paymentID string) (model.Payment, error) {
	payments, removed, err := removePayment(&inv.Document, inv.Payments, paymentID)
	if err != nil {
		return removed, err
	}
	inv.Payments = payments
	return removed, nil
}

// RecordPurchasePayment is RecordPayment for the supplier side.
func RecordPurchasePayment(pur *model.Purchase, p model.PurchasePayment) error {
	payments, err := appendPayment(&pur.Document, pur.Payments, p)
	if err != nil {
		return err
	}
	pur.Payments = payments
	return nil
}

// DeletePurchasePayment is DeletePayment for the supplier side.
func DeletePurchasePayment(pur *model.Purchase, paymentID string) (model.PurchasePayment, error) {
	payments, removed, err := removePayment(&pur.Document, pur.Payments, paymentID)
	if err != nil {
		return removed, err
	}
	pur.Payments = payments
	return removed, nil
}
