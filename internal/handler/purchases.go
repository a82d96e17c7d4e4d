package handler

import (
	"net/http"

	"github.com/iurnickita/bizledger/internal/model"
)

func (h *handler) PostSupplier(w http.ResponseWriter, r *http.Request) {
	var supplier model.Supplier
	if !h.readJSON(w, r, &supplier) {
		return
	}
	supplier, err := h.service.CreateSupplier(r.Context(), supplier)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, supplier)
}

func (h *handler) GetSupplierLedger(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.SupplierLedger(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) PostRecalculateSupplier(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.RecalculateSupplier(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) PostRecalculateSuppliers(w http.ResponseWriter, r *http.Request) {
	var request RecalculateJSONRequest
	if !h.readJSON(w, r, &request) {
		return
	}
	snapshots, err := h.service.RecalculateSuppliers(r.Context(), request.IDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshots)
}

func (h *handler) PostBulkSupplierPayment(w http.ResponseWriter, r *http.Request) {
	var payment PaymentJSONRequest
	if !h.readJSON(w, r, &payment) {
		return
	}
	result, err := h.service.AllocateBulkSupplierPayment(r.Context(), r.PathValue("id"), payment.request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.DeletePurchase(r.Context(), r.PathValue("id"), r.PathValue("purchaseId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) PostPurchase(w http.ResponseWriter, r *http.Request) {
	var purchase model.Purchase
	if !h.readJSON(w, r, &purchase) {
		return
	}
	purchase, err := h.service.CreatePurchase(r.Context(), purchase)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, purchase)
}

func (h *handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.service.GetPurchase(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, purchase)
}

func (h *handler) PutPurchase(w http.ResponseWriter, r *http.Request) {
	var update DocumentJSONUpdate
	if !h.readJSON(w, r, &update) {
		return
	}
	purchase, err := h.service.UpdatePurchaseItems(r.Context(), r.PathValue("id"), update.update())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, purchase)
}

func (h *handler) PostCancelPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.service.CancelPurchase(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, purchase)
}

func (h *handler) PostPurchasePayment(w http.ResponseWriter, r *http.Request) {
	var request PaymentJSONRequest
	if !h.readJSON(w, r, &request) {
		return
	}
	purchase, payment, err := h.service.RecordPurchasePayment(r.Context(), r.PathValue("id"), request.request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, RecordPurchasePaymentJSONResponse{Purchase: purchase, Payment: payment})
}

func (h *handler) DeletePurchasePayment(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.service.DeletePurchasePayment(r.Context(), r.PathValue("id"), r.PathValue("paymentId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, purchase)
}
