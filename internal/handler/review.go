package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/store"
)

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List()
	if err != nil {
		slog.Error("list corrections", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: appI18n.T(r.Context(), "ErrInternal"),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"corrections": summaries})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.Get(chi.URLParam(r, "correctionID"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: appI18n.T(r.Context(), "ErrNotFound"),
		})
		return
	}
	if err != nil {
		slog.Error("get correction", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: appI18n.T(r.Context(), "ErrInternal"),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// handleConfirm records a teacher's verdict on one graded question.
// This is the only mutation a stored report supports.
func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   appI18n.T(r.Context(), "ErrInvalidBody"),
			Details: err.Error(),
		})
		return
	}

	correctionID := chi.URLParam(r, "correctionID")
	questionID := chi.URLParam(r, "questionID")

	err := h.store.SetQuestionConfirmed(correctionID, questionID, req.Confirmed)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: appI18n.T(r.Context(), "ErrNotFound"),
		})
		return
	}
	if err != nil {
		slog.Error("confirm question", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: appI18n.T(r.Context(), "ErrInternal"),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"correctionId": correctionID,
		"questionId":   questionID,
		"confirmed":    req.Confirmed,
	})
}
