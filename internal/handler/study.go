package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/service"
)

// StudyHandler serves the review workflow endpoints.
type StudyHandler struct {
	study  *service.StudyService
	logger *slog.Logger
}

func NewStudyHandler(study *service.StudyService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{
		study:  study,
		logger: logger,
	}
}

type answerRequest struct {
	CardID string `json:"cardId"`
	Status string `json:"status"`
}

type answerResponse struct {
	LearnedPercent int `json:"learnedPercent"`
}

// HandleGetCards returns every card of the deck for a study session.
//
// GET /api/v1/study/{deckId}/cards
func (h *StudyHandler) HandleGetCards(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	cards, err := h.study.GetCards(r.Context(), userID, chi.URLParam(r, "deckId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// HandleAnswer records a remembered/forgotten answer and returns the deck's
// new learned percent.
//
// POST /api/v1/study/{deckId}/answer
func (h *StudyHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	percent, err := h.study.ProcessAnswer(r.Context(), userID, chi.URLParam(r, "deckId"), req.CardID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{LearnedPercent: percent})
}
