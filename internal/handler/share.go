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

// ShareHandler serves token minting and revocation on a deck, plus the
// token-holder side: previewing and importing a shared deck.
type ShareHandler struct {
	shares *service.ShareService
	logger *slog.Logger
}

func NewShareHandler(shares *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shares: shares,
		logger: logger,
	}
}

// HandleCreateToken mints a new share token for the caller's deck.
//
// POST /api/v1/decks/{deckId}/share
func (h *ShareHandler) HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	link, err := h.shares.GenerateToken(r.Context(), userID, chi.URLParam(r, "deckId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// HandleRevokeToken deletes a single share token of the caller's deck.
//
// DELETE /api/v1/decks/{deckId}/share/{token}
func (h *ShareHandler) HandleRevokeToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	err := h.shares.RevokeToken(r.Context(), userID, chi.URLParam(r, "deckId"), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetShared returns the preview a token resolves to.
//
// GET /api/v1/share/{token}
func (h *ShareHandler) HandleGetShared(w http.ResponseWriter, r *http.Request) {
	preview, err := h.shares.GetSharedDeck(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// importRequest optionally renames the copy; absent fields keep the source
// deck's values.
type importRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// HandleImport copies the shared deck into the caller's collection. The body
// is optional.
//
// POST /api/v1/share/{token}/import
func (h *ShareHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req importRequest
	if err := decodeJSONOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.ImportOverride(req.Name, req.Description); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	deck, err := h.shares.Import(r.Context(), userID, chi.URLParam(r, "token"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}
