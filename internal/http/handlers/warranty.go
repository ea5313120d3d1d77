package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/warranty"
	"github.com/MrKriegler/go-warranty/pkg/problem"
)

type WarrantyHandler struct {
	Quotes core.QuoteService
	Log    *slog.Logger
}

func NewWarrantyHandler(quotes core.QuoteService, log *slog.Logger) *WarrantyHandler {
	return &WarrantyHandler{Quotes: quotes, Log: log}
}

func (h *WarrantyHandler) Mount(r chi.Router) {
	r.Route("/warranty", func(r chi.Router) {
		r.Get("/duration", h.Duration)
		r.Get("/coverage", h.Coverage)
		r.Post("/quotes", h.Quote)
	})
}

type durationResponse struct {
	PaymentType string `json:"payment_type"`
	Normalized  string `json:"normalized"`
	Known       bool   `json:"known"`
	warranty.DurationInfo
	EmailText string              `json:"email_text"`
	Legacy    warranty.Divergence `json:"legacy"`
}

// Duration resolves a payment type to its warranty term.
// 200: JSON; 400: missing payment_type.
func (h *WarrantyHandler) Duration(w http.ResponseWriter, r *http.Request) {
	pt := r.URL.Query().Get("payment_type")
	if strings.TrimSpace(pt) == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Payment Type", "Query parameter payment_type is required.")
		return
	}

	writeJSON(h.Log, w, http.StatusOK, durationResponse{
		PaymentType:  pt,
		Normalized:   warranty.NormalizePaymentType(pt),
		Known:        warranty.IsKnownPaymentType(pt),
		DurationInfo: warranty.PaymentDurationInfo(pt),
		EmailText:    warranty.FormatDurationForEmail(pt),
		Legacy:       warranty.CompareResolvers(pt),
	})
}

type coverageResponse struct {
	PlanTier string                     `json:"plan_tier"`
	Coverage warranty.EligibilityMatrix `json:"coverage"`
}

// Coverage returns the benefit matrix for a plan tier. An empty tier is
// valid and yields the baseline (transfer cover only).
// 200: JSON.
func (h *WarrantyHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	tier := r.URL.Query().Get("plan_tier")
	writeJSON(h.Log, w, http.StatusOK, coverageResponse{
		PlanTier: tier,
		Coverage: warranty.Coverage(tier),
	})
}

type quoteRequest struct {
	PlanTier    string `json:"plan_tier" validate:"required"`
	PaymentType string `json:"payment_type" validate:"required"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

// Quote prices the term and coverage for checkout.
// 200: JSON; 400: bad JSON/validation.
func (h *WarrantyHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	in := core.QuoteInput{PlanTier: req.PlanTier, PaymentType: req.PaymentType}
	if req.StartDate != "" {
		// format already checked by the validator
		in.StartDate, _ = time.Parse(time.DateOnly, req.StartDate)
	}

	q, err := h.Quotes.Quote(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	writeJSON(h.Log, w, http.StatusOK, q)
}
