package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/service"
)

// authErrorStatus статус ответов /auth/* при ошибках.
// Ошибки входа и регистрации отдаются с 200 и телом ошибки: это часть внешнего контракта.
const authErrorStatus = http.StatusOK

// AuthHandler обрабатывает эндпоинты аутентификации
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest представляет тело запроса на логин
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse представляет тело ответа с токеном
type TokenResponse struct {
	Token string `json:"token"`
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, authErrorStatus, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondAuthError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, authErrorStatus, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		respondAuthError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}

func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithError(w, r, authErrorStatus, string(domain.MapErrorToCode(err)), errorMessage(r, err))
}
