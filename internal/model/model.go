package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// records keep money as JSON numbers, the way UI and reporting read them
	decimal.MarshalJSONWithoutQuotes = true
}

type PaymentTerm string

const (
	PaymentTermFull   PaymentTerm = "FullPayment"
	PaymentTermCredit PaymentTerm = "Credit"
	PaymentTermPaid   PaymentTerm = "Paid"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusFulfilled Status = "Fulfilled"
	StatusCanceled  Status = "Canceled"
)

// Payment modes accepted by the UI. Any non-empty mode is stored as is.
const (
	PaymentModeCash   = "Cash"
	PaymentModeCard   = "Card"
	PaymentModeUPI    = "UPI"
	PaymentModeBank   = "Bank Transfer"
	PaymentModeCheque = "Cheque"
)

// Строки документа

type Item struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	GSTPercent  decimal.Decimal `json:"gstPercent"`
}

// Document is the part shared by sales invoices and purchases.
// GrandTotal, BalanceDue and Status are derived and rewritten on every mutation.
type Document struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Items        []Item          `json:"items"`
	Discount     decimal.Decimal `json:"discount"`
	IsGSTInvoice bool            `json:"isGstInvoice"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
	PaymentTerm  PaymentTerm     `json:"paymentTerm"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	BalanceDue   decimal.Decimal `json:"balanceDue"`
	Status       Status          `json:"status"`
}

// AllocationDate is the date bulk payments are ordered by.
func (d Document) AllocationDate() time.Time {
	if d.DueDate != nil {
		return *d.DueDate
	}
	return d.Date
}

// Продажи

type Payment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Mode   string          `json:"mode"`
	Notes  string          `json:"notes,omitempty"`
}

func (p Payment) PaymentID() string           { return p.ID }
func (p Payment) PaidAmount() decimal.Decimal { return p.Amount }
func (p Payment) PaymentMode() string         { return p.Mode }

// Invoice is called "Order" in the business domain.
type Invoice struct {
	Document
	CustomerID string    `json:"customerId"`
	Payments   []Payment `json:"payments"`
}

// Закупки

type PurchasePayment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Mode   string          `json:"mode"`
	Notes  string          `json:"notes,omitempty"`
}

func (p PurchasePayment) PaymentID() string           { return p.ID }
func (p PurchasePayment) PaidAmount() decimal.Decimal { return p.Amount }
func (p PurchasePayment) PaymentMode() string         { return p.Mode }

type Purchase struct {
	Document
	SupplierID string            `json:"supplierId"`
	Payments   []PurchasePayment `json:"payments"`
}

// Контрагенты

// TransactionHistory is a cache over the owner's documents, rebuilt by recalculation.
type TransactionHistory struct {
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	LastPurchaseDate *time.Time      `json:"lastPurchaseDate,omitempty"`
}

type Customer struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Phone              string             `json:"phone,omitempty"`
	Email              string             `json:"email,omitempty"`
	TransactionHistory TransactionHistory `json:"transactionHistory"`
}

type Supplier struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Phone              string             `json:"phone,omitempty"`
	Email              string             `json:"email,omitempty"`
	TransactionHistory TransactionHistory `json:"transactionHistory"`
}

// Сводки

type DocumentSummary struct {
	ID         string          `json:"id"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	TotalPaid  decimal.Decimal `json:"totalPaid"`
	BalanceDue decimal.Decimal `json:"balanceDue"`
	Status     Status          `json:"status"`
}

type LedgerTotals struct {
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalDue         decimal.Decimal `json:"totalDue"`
	LastPurchaseDate *time.Time      `json:"lastPurchaseDate,omitempty"`
}

type CustomerLedgerSnapshot struct {
	CustomerID string            `json:"customerId"`
	Invoices   []DocumentSummary `json:"invoices"`
	LedgerTotals
}

type SupplierLedgerSnapshot struct {
	SupplierID string            `json:"supplierId"`
	Purchases  []DocumentSummary `json:"purchases"`
	LedgerTotals
}

// Распределение платежа

// Allocation is one slice of a bulk payment. For suppliers InvoiceID holds the purchase id.
type Allocation struct {
	InvoiceID       string          `json:"invoiceId"`
	PaymentID       string          `json:"paymentId"`
	AmountAllocated decimal.Decimal `json:"amountAllocated"`
	BalanceDue      decimal.Decimal `json:"balanceDue"`
	Status          Status          `json:"status"`
}

type AllocationFailure struct {
	InvoiceID string          `json:"invoiceId"`
	Amount    decimal.Decimal `json:"amount"`
	Error     string          `json:"error"`
}

// BulkAllocation reports a bulk payment. Allocations are committed; Failure, when set,
// names the first allocation that could not be persisted, and nothing after it was tried.
type BulkAllocation struct {
	Reference            string             `json:"reference"`
	OwnerID              string             `json:"ownerId"`
	PaymentAmount        decimal.Decimal    `json:"paymentAmount"`
	Allocations          []Allocation       `json:"allocations"`
	TotalAllocated       decimal.Decimal    `json:"totalAllocated"`
	UnallocatedRemainder decimal.Decimal    `json:"unallocatedRemainder"`
	Failure              *AllocationFailure `json:"failure,omitempty"`
}
