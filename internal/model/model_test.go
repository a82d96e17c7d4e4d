package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestInvoiceJSONShape(t *testing.T) {
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	inv := Invoice{
		Document: Document{
			ID:           "ORD-1001",
			Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Items:        []Item{{ProductID: "p1", ProductName: "Rice 5kg", Quantity: 3, UnitPrice: decimal.RequireFromString("12.50"), GSTPercent: decimal.NewFromInt(5)}},
			Discount:     decimal.RequireFromString("1.25"),
			IsGSTInvoice: true,
			GrandTotal:   decimal.RequireFromString("38.13"),
			PaymentTerm:  PaymentTermCredit,
			DueDate:      &due,
			BalanceDue:   decimal.RequireFromString("18.13"),
			Status:       StatusPending,
		},
		CustomerID: "cust-7",
		Payments:   []Payment{{ID: "pay-1", Amount: decimal.NewFromInt(20), Date: due, Mode: PaymentModeCash}},
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "customerId", "items", "discount", "isGstInvoice", "grandTotal",
		"paymentTerm", "dueDate", "payments", "balanceDue", "status"} {
		require.Contains(t, fields, key)
	}
	// money is written as a number
	require.Equal(t, 18.13, fields["balanceDue"])

	var back Invoice
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.BalanceDue.Equal(inv.BalanceDue))
	require.Equal(t, inv.Status, back.Status)
	require.True(t, inv.AllocationDate().Equal(back.AllocationDate()))
}

func TestAllocationDate(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{Date: date}
	require.Equal(t, date, doc.AllocationDate())

	due := date.AddDate(0, 1, 0)
	doc.DueDate = &due
	require.Equal(t, due, doc.AllocationDate())
}
