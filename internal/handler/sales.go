package handler

import (
	"net/http"

	"github.com/iurnickita/bizledger/internal/model"
)

func (h *handler) PostCustomer(w http.ResponseWriter, r *http.Request) {
	var customer model.Customer
	if !h.readJSON(w, r, &customer) {
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), customer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, customer)
}

func (h *handler) GetCustomerLedger(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.CustomerLedger(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) PostRecalculateCustomer(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.RecalculateCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) PostRecalculateCustomers(w http.ResponseWriter, r *http.Request) {
	var request RecalculateJSONRequest
	if !h.readJSON(w, r, &request) {
		return
	}
	snapshots, err := h.service.RecalculateCustomers(r.Context(), request.IDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshots)
}

func (h *handler) PostBulkPayment(w http.ResponseWriter, r *http.Request) {
	var payment PaymentJSONRequest
	if !h.readJSON(w, r, &payment) {
		return
	}
	result, err := h.service.AllocateBulkPayment(r.Context(), r.PathValue("id"), payment.request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.DeleteInvoice(r.Context(), r.PathValue("id"), r.PathValue("invoiceId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) PostInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice model.Invoice
	if !h.readJSON(w, r, &invoice) {
		return
	}
	invoice, err := h.service.CreateInvoice(r.Context(), invoice)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, invoice)
}

func (h *handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.GetInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoice)
}

func (h *handler) PutInvoice(w http.ResponseWriter, r *http.Request) {
	var update DocumentJSONUpdate
	if !h.readJSON(w, r, &update) {
		return
	}
	invoice, err := h.service.UpdateInvoiceItems(r.Context(), r.PathValue("id"), update.update())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoice)
}

func (h *handler) PostCancelInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.CancelInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoice)
}

func (h *handler) PostPayment(w http.ResponseWriter, r *http.Request) {
	var request PaymentJSONRequest
	if !h.readJSON(w, r, &request) {
		return
	}
	invoice, payment, err := h.service.RecordPayment(r.Context(), r.PathValue("id"), request.request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, RecordPaymentJSONResponse{Invoice: invoice, Payment: payment})
}

func (h *handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.DeletePayment(r.Context(), r.PathValue("id"), r.PathValue("paymentId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoice)
}
