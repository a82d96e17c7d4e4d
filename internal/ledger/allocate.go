package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
)

// Outstanding is a document a bulk payment may be allocated to.
type Outstanding struct {
	ID         string
	Date       time.Time
	BalanceDue decimal.Decimal
}

// Slice is the part of a bulk payment planned for one document.
type Slice struct {
	ID     string
	Amount decimal.Decimal
}

// Plan is the allocation of a bulk payment, oldest document first.
type Plan struct {
	Slices    []Slice
	Total     decimal.Decimal
	Remainder decimal.Decimal
}

// OutstandingInvoices returns the invoices with a positive balance due.
func OutstandingInvoices(invoices []model.Invoice) []Outstanding {
	var out []Outstanding
	for _, inv := range invoices {
		RecalculateInvoice(&inv)
		if inv.Status != model.StatusCanceled && inv.BalanceDue.Sign() > 0 {
			out = append(out, Outstanding{ID: inv.ID, Date: inv.AllocationDate(), BalanceDue: inv.BalanceDue})
		}
	}
	return out
}

// OutstandingPurchases returns the purchases with a positive balance due.
func OutstandingPurchases(purchases []model.Purchase) []Outstanding {
	var out []Outstanding
	for _, pur := range purchases {
		RecalculatePurchase(&pur)
		if pur.Status != model.StatusCanceled && pur.BalanceDue.Sign() > 0 {
			out = append(out, Outstanding{ID: pur.ID, Date: pur.AllocationDate(), BalanceDue: pur.BalanceDue})
		}
	}
	return out
}

// PlanAllocation distributes amount over candidates sorted by date ascending,
// ties by id ascending. Each document gets min(remaining, balance due); whatever
// exceeds the total outstanding is returned as Remainder.
func PlanAllocation(amount decimal.Decimal, candidates []Outstanding) (Plan, error) {
	if amount.Sign() <= 0 {
		return Plan{}, Validationf("payment amount must be positive, got %s", amount)
	}
	if err := money.Check(amount); err != nil {
		return Plan{}, Validationf("payment amount: %v", err)
	}

	sorted := make([]Outstanding, 0, len(candidates))
	for _, c := range candidates {
		if c.BalanceDue.Sign() > 0 {
			sorted = append(sorted, c)
		}
	}
	if len(sorted) == 0 {
		return Plan{}, Validationf("no outstanding documents")
	}
	slices.SortFunc(sorted, func(a, b Outstanding) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	plan := Plan{Remainder: amount}
	for _, c := range sorted {
		allocated := money.Min(plan.Remainder, c.BalanceDue)
		if allocated.Sign() <= 0 {
			break
		}
		plan.Slices = append(plan.Slices, Slice{ID: c.ID, Amount: allocated})
		plan.Remainder = plan.Remainder.Sub(allocated)
	}
	plan.Total = amount.Sub(plan.Remainder)
	return plan, nil
}
