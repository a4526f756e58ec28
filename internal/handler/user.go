package handler

import (
	"log/slog"
	"net/http"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/service"
	"github.com/akozyrev/memocards/internal/validate"
)

// UserHandler serves the /users/me endpoints. All routes sit behind
// RequireAuth, so the userID is always in the request context.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

type updateProfileRequest struct {
	Email string `json:"email"`
	Login string `json:"login"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleGetMe returns the caller's profile.
//
// GET /api/v1/users/me
func (h *UserHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateMe changes the caller's email and login.
//
// PUT /api/v1/users/me
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.UpdateProfile(req.Email, req.Login); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req.Email, req.Login)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdatePassword re-checks the current password and sets a new one.
//
// PUT /api/v1/users/me/password
func (h *UserHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.UpdatePassword(req.CurrentPassword, req.NewPassword); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	if err := h.users.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleDeleteMe deletes the account and ends the session.
//
// DELETE /api/v1/users/me
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
