package reporting

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the sales history, sale detail and daily summary reads.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/sales", h.listSales)                    // GET /api/v1/sales
	r.Get("/api/v1/sales/{transaction_id}", h.saleDetail)  // GET /api/v1/sales/{transaction_id}
	r.Get("/api/v1/reports/daily", h.dailySummary)         // GET /api/v1/reports/daily?date=YYYY-MM-DD
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		DateFrom:      q.Get("date_from"),
		DateTo:        q.Get("date_to"),
		Status:        q.Get("status"),
		TransactionID: q.Get("transaction_id"),
		SortBy:        q.Get("sort_by"),
		SortOrder:     q.Get("sort_order"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		f.Limit = limit
	}

	summaries, err := h.service.ListSales(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	if summaries == nil {
		summaries = []*SaleSummary{}
	}
	respond(w, http.StatusOK, summaries)
}

func (h *Handler) saleDetail(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transaction_id")
	detail, err := h.service.GetSaleDetail(r.Context(), transactionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, detail)
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetDailySummary(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
