// Package handler exposes the correction pipeline over a JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/correggi-verifiche/api/internal/correction"
	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/llm"
	"github.com/correggi-verifiche/api/internal/model"
	"github.com/correggi-verifiche/api/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc   *correction.Service
	store *store.Store
	gw    *llm.Gateway
}

// New creates a new Handler.
func New(svc *correction.Service, s *store.Store, gw *llm.Gateway) *Handler {
	return &Handler{svc: svc, store: s, gw: gw}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/correct", h.handleCorrect)
	r.Get("/api/corrections", h.handleList)
	r.Get("/api/corrections/{correctionID}", h.handleGet)
	r.Post("/api/corrections/{correctionID}/questions/{questionID}/confirm", h.handleConfirm)
	r.Get("/healthz", h.handleHealthz)
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleCorrect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   appI18n.T(ctx, "ErrInvalidBody"),
			Details: err.Error(),
		})
		return
	}

	result, err := h.svc.Correct(ctx, req)
	if err != nil {
		h.writeCorrectError(w, r, err)
		return
	}

	if err := h.store.Save(result); err != nil {
		// The grading already succeeded; losing history must not fail
		// the request.
		slog.Error("failed to persist correction", "id", result.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

// writeCorrectError maps pipeline errors onto the HTTP contract:
// request and extraction problems are 400s, everything touching the
// provider is a 500 with the failing stage identified.
func (h *Handler) writeCorrectError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var ve *correction.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: appI18n.Td(ctx, "ErrMissingField", map[string]any{"Field": ve.Field}),
		})
		return
	}
	if errors.Is(err, correction.ErrNoQuestions) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: appI18n.T(ctx, "ErrNoQuestions"),
		})
		return
	}
	if errors.Is(err, llm.ErrNoAPIKey) {
		slog.Error("correction attempted without AI credentials")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: appI18n.T(ctx, "ErrNotConfigured"),
		})
		return
	}

	var se *correction.StageError
	if errors.As(err, &se) {
		msgID := "ErrImageAnalysis"
		if se.Stage == correction.StageEvaluation {
			msgID = "ErrEvaluation"
		}
		details := se.Err.Error()
		var ue *llm.UpstreamError
		if errors.As(err, &ue) && ue.AuthFailed() {
			details = appI18n.T(ctx, "ErrAuth")
		}
		slog.Error("correction stage failed", "stage", se.Stage, "error", se.Err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   appI18n.T(ctx, msgID),
			Details: details,
		})
		return
	}

	slog.Error("correction failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: appI18n.T(ctx, "ErrInternal"),
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"aiConfigured": h.gw.Configured(),
	})
}
