package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/pkg/problem"
)

type PolicyHandler struct {
	Svc core.PolicyService
	Log *slog.Logger
}

func NewPolicyHandler(svc core.PolicyService, log *slog.Logger) *PolicyHandler {
	return &PolicyHandler{Svc: svc, Log: log}
}

func (h *PolicyHandler) Mount(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Post("/", h.Issue)
		r.Get("/number/{number}", h.GetByNumber)
		r.Get("/{policy_id}", h.Get)
	})
}

type issueRequest struct {
	OrderRef string `json:"order_ref" validate:"required"`
	Customer struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone"`
	} `json:"customer"`
	Vehicle struct {
		Registration string `json:"registration" validate:"required"`
		Make         string `json:"make"`
		Model        string `json:"model"`
		Mileage      int    `json:"mileage" validate:"gte=0"`
	} `json:"vehicle"`
	PlanTier     string `json:"plan_tier" validate:"required"`
	PaymentType  string `json:"payment_type" validate:"required"`
	DiscountCode string `json:"discount_code"`
	StartDate    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

func (req issueRequest) toInput() core.IssueInput {
	in := core.IssueInput{
		OrderRef: req.OrderRef,
		Customer: core.Customer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		Vehicle: core.Vehicle{
			Registration: req.Vehicle.Registration,
			Make:         req.Vehicle.Make,
			Model:        req.Vehicle.Model,
			Mileage:      req.Vehicle.Mileage,
		},
		PlanTier:     req.PlanTier,
		PaymentType:  req.PaymentType,
		DiscountCode: req.DiscountCode,
	}
	if req.StartDate != "" {
		in.StartDate, _ = time.Parse(time.DateOnly, req.StartDate)
	}
	return in
}

// Issue creates a policy for a paid order. Replays of the same order_ref
// return the existing policy.
// 201: JSON; 400: bad JSON/validation; 500: internal error.
func (h *PolicyHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	policy, err := h.Svc.IssueFromOrder(r.Context(), req.toInput())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to issue policy")
		return
	}

	writeJSON(h.Log, w, http.StatusCreated, policy)
}

// Get retrieves a policy by ID.
// 200: JSON; 404: not found; 500: internal error.
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "policy_id")

	policy, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get policy")
		return
	}
	writeJSON(h.Log, w, http.StatusOK, policy)
}

// GetByNumber retrieves a policy by its number.
// 200: JSON; 404: not found; 500: internal error.
func (h *PolicyHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	policy, err := h.Svc.GetByNumber(r.Context(), number)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to get policy")
		return
	}
	writeJSON(h.Log, w, http.StatusOK, policy)
}

// PolicyAdminHandler lists policies by customer email. Admin only.
type PolicyAdminHandler struct {
	Svc core.PolicyService
	Log *slog.Logger
}

func NewPolicyAdminHandler(svc core.PolicyService, log *slog.Logger) *PolicyAdminHandler {
	return &PolicyAdminHandler{Svc: svc, Log: log}
}

func (h *PolicyAdminHandler) Mount(r chi.Router) {
	r.Get("/policies", h.List)
}

// List returns a customer's policies with pagination.
// 200: JSON; 400: missing customer_email; 500: internal error.
func (h *PolicyAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("customer_email")
	if email == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Customer Email", "Query parameter customer_email is required.")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	policies, total, err := h.Svc.ListByCustomer(r.Context(), email, limit, offset)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list policies")
		return
	}

	// Return empty array instead of null
	if policies == nil {
		policies = []core.Policy{}
	}

	writeJSON(h.Log, w, http.StatusOK, map[string]any{
		"items":  policies,
		"total":  total,
		"limit":  min(limit, 100),
		"offset": offset,
	})
}
