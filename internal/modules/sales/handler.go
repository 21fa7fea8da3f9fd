package sales

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the sale mutation endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/sales", h.createSale)
	r.Patch("/api/v1/sales/{transaction_id}/status", h.updateStatus)
	r.Put("/api/v1/sales/items/{item_id}", h.updateItem)
	r.Delete("/api/v1/sales/items/{item_id}", h.deleteItem)
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sale, err := h.service.CreateSale(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, CreateSaleResponse{
		Success:       true,
		TransactionID: sale.TransactionID,
		Subtotal:      sale.Subtotal,
		TaxAmount:     sale.TaxAmount,
		TotalAmount:   sale.TotalAmount,
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transaction_id")
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.UpdateStatus(r.Context(), transactionID, req); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "item_id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.UpdateItem(r.Context(), itemID, req); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "item_id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}
	var req DeleteItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.DeleteItem(r.Context(), itemID, req); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// respondError maps ledger errors to status codes without leaking storage
// diagnostics for unclassified failures.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
	case errors.Is(err, ErrNotFound):
		respond(w, http.StatusNotFound, map[string]any{"success": false, "error": "not found"})
	case errors.Is(err, ErrInvalidTransition):
		respond(w, http.StatusUnprocessableEntity, map[string]any{"success": false, "error": err.Error()})
	case errors.Is(err, ErrConflict):
		respond(w, http.StatusConflict, map[string]any{"success": false, "error": "conflicting concurrent update"})
	default:
		respond(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
