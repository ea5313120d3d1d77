package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/pkg/problem"
)

type DraftHandler struct {
	Svc core.DraftService
	Log *slog.Logger
}

func NewDraftHandler(svc core.DraftService, log *slog.Logger) *DraftHandler {
	return &DraftHandler{Svc: svc, Log: log}
}

func (h *DraftHandler) Mount(r chi.Router) {
	r.Route("/quote-drafts/{draft_id}", func(r chi.Router) {
		r.Put("/", h.Save)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
	})
}

// Save stores the raw JSON body as the draft.
// 200: JSON; 400: body is not JSON or too large; 500: internal error.
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "Invalid Body", "Body could not be read.")
		return
	}

	draft, err := h.Svc.Save(r.Context(), chi.URLParam(r, "draft_id"), json.RawMessage(body))
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	writeJSON(h.Log, w, http.StatusOK, draft)
}

// Get returns a saved draft.
// 200: JSON; 404: missing or expired; 500: internal error.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Svc.Get(r.Context(), chi.URLParam(r, "draft_id"))
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Quote draft not found")
		return
	}
	writeJSON(h.Log, w, http.StatusOK, draft)
}

// Delete removes a draft; deleting a missing draft is not an error.
// 204; 500: internal error.
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "draft_id")); err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to delete quote draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
