// Package ledger holds the rules of the invoice/payment ledger: totals, balance due,
// status, payment bookkeeping, bulk allocation plans and the full rebuild of an
// owner's balances. It does no I/O.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
)

// GrandTotal is the sum of line subtotals, plus per-line GST when isGST, minus discount.
// Each line's tax is rounded to cents before summing; the discount applies after tax.
func GrandTotal(items []model.Item, discount decimal.Decimal, isGST bool) decimal.Decimal {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		if isGST {
			tax = tax.Add(money.Percent(line, item.GSTPercent))
		}
	}
	return subtotal.Add(tax).Sub(discount)
}

// ValidateDocument checks the user-supplied part of a document. fullTerm is the
// non-credit term of the side: FullPayment for invoices, Paid for purchases.
func ValidateDocument(doc model.Document, fullTerm model.PaymentTerm) error {
	if doc.ID == "" {
		return Validationf("document id is empty")
	}
	if doc.Date.IsZero() {
		return Validationf("document %s has no date", doc.ID)
	}
	if err := validateItems(doc.Items); err != nil {
		return err
	}
	if err := money.Check(doc.Discount); err != nil {
		return Validationf("discount: %v", err)
	}

	switch doc.PaymentTerm {
	case fullTerm:
		if doc.DueDate != nil {
			return Validationf("payment term %s does not take a due date", doc.PaymentTerm)
		}
	case model.PaymentTermCredit:
		if doc.DueDate == nil {
			return Validationf("payment term %s requires a due date", doc.PaymentTerm)
		}
	default:
		return Validationf("unknown payment term %q", doc.PaymentTerm)
	}

	if GrandTotal(doc.Items, doc.Discount, doc.IsGSTInvoice).IsNegative() {
		return Validationf("discount %s exceeds document total", doc.Discount)
	}
	return nil
}

func validateItems(items []model.Item) error {
	if len(items) == 0 {
		return Validationf("document has no items")
	}
	for i, item := range items {
		if item.Quantity <= 0 {
			return Validationf("item %d: quantity must be positive", i)
		}
		if err := money.Check(item.UnitPrice); err != nil {
			return Validationf("item %d: unit price: %v", i, err)
		}
		if item.GSTPercent.IsNegative() {
			return Validationf("item %d: gst percent %s is negative", i, item.GSTPercent)
		}
	}
	return nil
}

// derive rewrites the computed fields of doc from its items, discount and payments.
// A canceled document keeps its status.
func derive[P Payable](doc *model.Document, payments []P) {
	doc.GrandTotal = GrandTotal(doc.Items, doc.Discount, doc.IsGSTInvoice)
	doc.BalanceDue = doc.GrandTotal.Sub(Paid(payments))
	if doc.Status == model.StatusCanceled {
		return
	}
	if doc.BalanceDue.Sign() <= 0 {
		doc.Status = model.StatusFulfilled
	} else {
		doc.Status = model.StatusPending
	}
}

// RecalculateInvoice re-derives grand total, balance due and status of inv.
func RecalculateInvoice(inv *model.Invoice) {
	derive(&inv.Document, inv.Payments)
}

// RecalculatePurchase re-derives grand total, balance due and status of p.
func RecalculatePurchase(p *model.Purchase) {
	derive(&p.Document, p.Payments)
}

// Cancel moves doc to the terminal Canceled status.
func Cancel(doc *model.Document) error {
	if doc.Status == model.StatusCanceled {
		return Validationf("document %s is already canceled", doc.ID)
	}
	doc.Status = model.StatusCanceled
	return nil
}
