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

// DeckHandler serves the /decks endpoints.
type DeckHandler struct {
	decks  *service.DeckService
	logger *slog.Logger
}

func NewDeckHandler(decks *service.DeckService, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{
		decks:  decks,
		logger: logger,
	}
}

type deckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// pageResponse wraps any paged listing.
type pageResponse struct {
	Items      any `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// HandleList returns one page of the caller's decks.
//
// GET /api/v1/decks?page=0&size=20
func (h *DeckHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	result, err := h.decks.List(r.Context(), userID, pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Items:      result.Decks,
		Page:       result.Page,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// HandleCreate adds a deck.
//
// POST /api/v1/decks
func (h *DeckHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req deckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.Deck(req.Name, req.Description); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	deck, err := h.decks.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

// HandleGet returns a single deck.
//
// GET /api/v1/decks/{deckId}
func (h *DeckHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	deck, err := h.decks.Get(r.Context(), userID, chi.URLParam(r, "deckId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// HandleUpdate renames or re-describes a deck.
//
// PUT /api/v1/decks/{deckId}
func (h *DeckHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req deckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.Deck(req.Name, req.Description); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	deck, err := h.decks.Update(r.Context(), userID, chi.URLParam(r, "deckId"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// HandleDelete removes a deck with its cards and share tokens.
//
// DELETE /api/v1/decks/{deckId}
func (h *DeckHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.decks.Delete(r.Context(), userID, chi.URLParam(r, "deckId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
