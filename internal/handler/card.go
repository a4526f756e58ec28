package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/service"
	"github.com/akozyrev/memocards/internal/validate"
)

// CardHandler serves the /decks/{deckId}/cards endpoints.
type CardHandler struct {
	cards  *service.CardService
	logger *slog.Logger
}

func NewCardHandler(cards *service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		cards:  cards,
		logger: logger,
	}
}

type cardRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HandleList returns one page of a deck's cards.
//
// GET /api/v1/decks/{deckId}/cards?page=0&size=20
func (h *CardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	result, err := h.cards.List(r.Context(), userID, chi.URLParam(r, "deckId"), pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Items:      result.Cards,
		Page:       result.Page,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// HandleCreate adds a card to a deck.
//
// POST /api/v1/decks/{deckId}/cards
func (h *CardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.Card(req.Question, req.Answer); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	card, err := h.cards.Create(r.Context(), userID, chi.URLParam(r, "deckId"), req.Question, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// HandleUpdate rewrites a card's question and answer.
//
// PUT /api/v1/decks/{deckId}/cards/{cardId}
func (h *CardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.Card(req.Question, req.Answer); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	card, err := h.cards.Update(r.Context(), userID,
		chi.URLParam(r, "deckId"), chi.URLParam(r, "cardId"), req.Question, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandleDelete removes a card.
//
// DELETE /api/v1/decks/{deckId}/cards/{cardId}
func (h *CardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	err := h.cards.Delete(r.Context(), userID, chi.URLParam(r, "deckId"), chi.URLParam(r, "cardId"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
