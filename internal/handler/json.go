package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/service"
)

type PaymentJSONRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Mode   string          `json:"mode"`
	Notes  string          `json:"notes"`
}

func (p PaymentJSONRequest) request() service.PaymentRequest {
	return service.PaymentRequest{
		Amount: p.Amount,
		Date:   p.Date,
		Mode:   p.Mode,
		Notes:  p.Notes,
	}
}

type DocumentJSONUpdate struct {
	Items        []model.Item    `json:"items"`
	Discount     decimal.Decimal `json:"discount"`
	IsGSTInvoice bool            `json:"isGstInvoice"`
}

func (u DocumentJSONUpdate) update() service.DocumentUpdate {
	return service.DocumentUpdate{
		Items:        u.Items,
		Discount:     u.Discount,
		IsGSTInvoice: u.IsGSTInvoice,
	}
}

type RecalculateJSONRequest struct {
	IDs []string `json:"ids"`
}

type RecordPaymentJSONResponse struct {
	Invoice model.Invoice `json:"invoice"`
	Payment model.Payment `json:"payment"`
}

type RecordPurchasePaymentJSONResponse struct {
	Purchase model.Purchase        `json:"purchase"`
	Payment  model.PurchasePayment `json:"payment"`
}
