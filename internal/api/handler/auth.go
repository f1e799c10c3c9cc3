package handler

import (
	"net/http"

	"github.com/mcoot/scoreboard/internal/api/middleware"
	"github.com/mcoot/scoreboard/internal/api/request"
	"github.com/mcoot/scoreboard/internal/api/response"
	"github.com/mcoot/scoreboard/internal/services/auth"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession("User created successfully", session))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession("Login successful", session))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	user, err := h.authService.Me(r.Context(), identity)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
