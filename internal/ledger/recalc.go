package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/model"
)

// RebuildCustomer sorts invoices by id, re-derives each of them in place and
// returns the customer's ledger. Canceled invoices are listed but do not count
// towards the totals. The result depends only on the raw invoice history.
func RebuildCustomer(customerID string, invoices []model.Invoice) model.CustomerLedgerSnapshot {
	slices.SortFunc(invoices, func(a, b model.Invoice) int { return cmp.Compare(a.ID, b.ID) })

	snapshot := model.CustomerLedgerSnapshot{
		CustomerID:   customerID,
		Invoices:     make([]model.DocumentSummary, 0, len(invoices)),
		LedgerTotals: emptyTotals(),
	}
	for i := range invoices {
		RecalculateInvoice(&invoices[i])
		paid := Paid(invoices[i].Payments)
		snapshot.Invoices = append(snapshot.Invoices, summarize(invoices[i].Document, paid))
		accumulate(&snapshot.LedgerTotals, invoices[i].Document, paid)
	}
	return snapshot
}

// RebuildSupplier is RebuildCustomer for purchases.
func RebuildSupplier(supplierID string, purchases []model.Purchase) model.SupplierLedgerSnapshot {
	slices.SortFunc(purchases, func(a, b model.Purchase) int { return cmp.Compare(a.ID, b.ID) })

	snapshot := model.SupplierLedgerSnapshot{
		SupplierID:   supplierID,
		Purchases:    make([]model.DocumentSummary, 0, len(purchases)),
		LedgerTotals: emptyTotals(),
	}
	for i := range purchases {
		RecalculatePurchase(&purchases[i])
		paid := Paid(purchases[i].Payments)
		snapshot.Purchases = append(snapshot.Purchases, summarize(purchases[i].Document, paid))
		accumulate(&snapshot.LedgerTotals, purchases[i].Document, paid)
	}
	return snapshot
}

// History is the cached transaction history matching totals.
func History(totals model.LedgerTotals) model.TransactionHistory {
	return model.TransactionHistory{
		TotalSpent:       totals.TotalSpent,
		LastPurchaseDate: totals.LastPurchaseDate,
	}
}

func emptyTotals() model.LedgerTotals {
	return model.LedgerTotals{
		TotalSpent: decimal.Zero,
		TotalPaid:  decimal.Zero,
		TotalDue:   decimal.Zero,
	}
}

func summarize(doc model.Document, paid decimal.Decimal) model.DocumentSummary {
	return model.DocumentSummary{
		ID:         doc.ID,
		GrandTotal: doc.GrandTotal,
		TotalPaid:  paid,
		BalanceDue: doc.BalanceDue,
		Status:     doc.Status,
	}
}

func accumulate(totals *model.LedgerTotals, doc model.Document, paid decimal.Decimal) {
	if doc.Status == model.StatusCanceled {
		return
	}
	totals.TotalSpent = totals.TotalSpent.Add(doc.GrandTotal)
	totals.TotalPaid = totals.TotalPaid.Add(paid)
	totals.TotalDue = totals.TotalDue.Add(doc.BalanceDue)
	if totals.LastPurchaseDate == nil || doc.Date.After(*totals.LastPurchaseDate) {
		date := doc.Date
		totals.LastPurchaseDate = &date
	}
}

// HistoryChanged reports whether the cached history differs from the rebuilt one.
func HistoryChanged(cached, rebuilt model.TransactionHistory) bool {
	if !cached.TotalSpent.Equal(rebuilt.TotalSpent) {
		return true
	}
	return !sameTime(cached.LastPurchaseDate, rebuilt.LastPurchaseDate)
}

// DerivedChanged reports whether the computed fields of two versions of a document differ.
func DerivedChanged(before, after model.Document) bool {
	return !before.GrandTotal.Equal(after.GrandTotal) ||
		!before.BalanceDue.Equal(after.BalanceDue) ||
		before.Status != after.Status
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
