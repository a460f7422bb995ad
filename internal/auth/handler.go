package handler

import (
	"errors"
	"net/http"

	"newsdesk/internal/auth/service"
	"newsdesk/middleware"
	"newsdesk/pkg/logger"

	"github.com/go-chi/render"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type AuthHandler struct {
	Service *service.Service
}

func NewAuthHandler(service *service.Service) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, 1<<20), &req); err != nil {
		middleware.RespondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.Service.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Sugar.Infof("Failed login attempt from %s", r.RemoteAddr)
		middleware.RespondError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to sign token: %v", err)
		middleware.RespondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	middleware.RespondJSON(w, r, http.StatusOK, LoginResponse{Token: token})
}

// Me echoes the identity attached by middleware.AuthMiddleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.RespondError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	middleware.RespondJSON(w, r, http.StatusOK, identity)
}
