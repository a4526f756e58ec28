package handler

import (
	"log/slog"
	"net/http"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/model"
	"github.com/akozyrev/memocards/internal/service"
	"github.com/akozyrev/memocards/internal/validate"
)

// AuthHandler covers registration, login, and logout. Sessions live in an
// HttpOnly JWT cookie; login and register both issue one.
type AuthHandler struct {
	users  *service.UserService
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthHandler(users *service.UserService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// userResponse is the public view of an account. The password hash never
// leaves the model, and the json tag on the model backs that up.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Login string `json:"login"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Login: u.Login}
}

// HandleRegister creates an account and logs it straight in.
//
// POST /api/v1/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.Register(req.Email, req.Login, req.Password); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Login, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if !h.issueSession(w, user.ID) {
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin verifies credentials and issues a fresh session cookie.
//
// POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if details := validate.LoginRequest(req.Login, req.Password); len(details) > 0 {
		writeError(w, apperror.Validation(details))
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if !h.issueSession(w, user.ID) {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleLogout clears the session cookie. The token itself stays valid until
// expiry; without the cookie the browser cannot send it.
//
// POST /api/v1/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// issueSession signs a token for userID and sets the HttpOnly cookie.
// Reports false after writing a 500 if signing fails.
func (h *AuthHandler) issueSession(w http.ResponseWriter, userID string) bool {
	token, err := h.tokens.Generate(userID)
	if err != nil {
		h.logger.Error("token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}
