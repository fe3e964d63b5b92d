package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/service"
)

// AuthHandler serves registration, login and the current-identity lookup.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly issued credential. Clients send it back in
// the x-auth-token header.
type TokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister creates an identity.
//
// HTTP: POST /api/users
// REQUEST BODY: {"name": "Ada", "email": "ada@example.com", "password": "secret123"}
// RESPONSE: 200 {"token": "..."}; 409 if the email is taken
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, TokenResponse{Token: res.Token})
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /api/auth
// RESPONSE: 200 {"token": "..."}; 400 "Invalid credentials"
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, TokenResponse{Token: res.Token})
}

// HandleMe returns the identity named by the request's credential.
//
// HTTP: GET /api/auth (protected by auth.RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w, h.logger)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, user)
}

// writeUnauthenticated covers a protected handler mounted without
// auth.RequireAuth.
func writeUnauthenticated(w http.ResponseWriter, logger *slog.Logger) {
	writeError(w, logger, apperror.Unauthorized(auth.ReasonMissing))
}
