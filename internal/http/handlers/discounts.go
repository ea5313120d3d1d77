package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/platform/metrics"
	"github.com/MrKriegler/go-warranty/internal/warranty"
	"github.com/MrKriegler/go-warranty/pkg/problem"
)

// DiscountHandler serves the public redeemability check.
type DiscountHandler struct {
	Svc core.DiscountService
	Log *slog.Logger
}

func NewDiscountHandler(svc core.DiscountService, log *slog.Logger) *DiscountHandler {
	return &DiscountHandler{Svc: svc, Log: log}
}

func (h *DiscountHandler) Mount(r chi.Router) {
	r.Get("/discounts/{code}/validate", h.Validate)
}

type validateResponse struct {
	Code   string            `json:"code"`
	Valid  bool              `json:"valid"`
	Reason string            `json:"reason,omitempty"`
	Type   core.DiscountType `json:"type,omitempty"`
	Value  float64           `json:"value,omitempty"`
}

// Validate reports whether a code can be applied, optionally for ?product=.
// Unredeemable codes answer 200 with valid=false so checkout can show the reason.
// 200: JSON; 404: unknown code; 500: internal error.
func (h *DiscountHandler) Validate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	product := r.URL.Query().Get("product")

	d, err := h.Svc.CheckRedeemable(r.Context(), code, product)
	switch {
	case err == nil:
		writeJSON(h.Log, w, http.StatusOK, validateResponse{Code: d.Code, Valid: true, Type: d.Type, Value: d.Value})
	case errors.Is(err, core.ErrInvalidState):
		writeJSON(h.Log, w, http.StatusOK, validateResponse{Code: d.Code, Valid: false, Reason: err.Error()})
	default:
		writeError(r.Context(), h.Log, w, err, "Failed to validate discount code")
	}
}

// AdminHandler exposes campaign and sweep operations behind the API key.
type AdminHandler struct {
	Discounts core.DiscountService
	Log       *slog.Logger
}

func NewAdminHandler(discounts core.DiscountService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{Discounts: discounts, Log: log}
}

func (h *AdminHandler) Mount(r chi.Router) {
	r.Post("/discounts:expire", h.Expire)
	r.Route("/discounts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/campaign:refresh", h.RefreshCampaign)
		r.Get("/{code}", h.Get)
	})
	r.Get("/coverage", h.Coverage)
}

// RefreshCampaign creates the campaign code or pushes its window forward.
// 200: JSON; 500: internal error.
func (h *AdminHandler) RefreshCampaign(w http.ResponseWriter, r *http.Request) {
	d, err := h.Discounts.RefreshCampaign(r.Context())
	if err != nil {
		metrics.CampaignRefreshTotal.WithLabelValues("error").Inc()
		writeError(r.Context(), h.Log, w, err, "Failed to refresh campaign code")
		return
	}
	metrics.CampaignRefreshTotal.WithLabelValues("ok").Inc()
	h.Log.InfoContext(r.Context(), "campaign code refreshed by admin", "code", d.Code, "valid_to", d.ValidTo)
	writeJSON(h.Log, w, http.StatusOK, d)
}

// Expire runs the expiry sweep now.
// 200: JSON {"archived": n}; 500: internal error.
func (h *AdminHandler) Expire(w http.ResponseWriter, r *http.Request) {
	n, err := h.Discounts.ExpireCodes(r.Context())
	if err != nil {
		metrics.ExpirySweepsTotal.WithLabelValues("error").Inc()
		writeError(r.Context(), h.Log, w, err, "Failed to expire discount codes")
		return
	}
	metrics.ExpirySweepsTotal.WithLabelValues("ok").Inc()
	metrics.DiscountCodesArchivedTotal.Add(float64(n))
	writeJSON(h.Log, w, http.StatusOK, map[string]int64{"archived": n})
}

// List returns codes; ?include_archived=true adds archived ones.
// 200: JSON; 500: internal error.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("include_archived"))

	codes, err := h.Discounts.List(r.Context(), includeArchived)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list discount codes")
		return
	}
	if codes == nil {
		codes = []core.DiscountCode{}
	}
	writeJSON(h.Log, w, http.StatusOK, map[string]any{"items": codes})
}

// Get returns one code including archived ones.
// 200: JSON; 404: not found; 500: internal error.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Discounts.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get discount code")
		return
	}
	writeJSON(h.Log, w, http.StatusOK, d)
}

type benefitStatus struct {
	Benefit  warranty.Benefit `json:"benefit"`
	Eligible bool             `json:"eligible"`
}

// Coverage lists each benefit's eligibility for ?plan_tier=, the view the
// admin dashboard renders. ?benefit= narrows it to one benefit.
// 200: JSON; 400: unknown benefit.
func (h *AdminHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	tier := r.URL.Query().Get("plan_tier")

	benefits := warranty.Benefits
	if b := r.URL.Query().Get("benefit"); b != "" {
		parsed, ok := warranty.ParseBenefit(b)
		if !ok {
			problem.Write(w, http.StatusBadRequest, "Unknown Benefit", "Query parameter benefit is not a known benefit.")
			return
		}
		benefits = []warranty.Benefit{parsed}
	}

	out := make([]benefitStatus, 0, len(benefits))
	for _, b := range benefits {
		out = append(out, benefitStatus{Benefit: b, Eligible: warranty.CoverageStatus(tier, b)})
	}
	writeJSON(h.Log, w, http.StatusOK, map[string]any{"plan_tier": tier, "benefits": out})
}
