package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/projetojaiba/corrida-system/middleware"
	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/services"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Login проверяет учётные данные админа и выдаёт JWT на 24 часа.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success": true,
		"token":   token,
		"user": jsonResponse{
			"id":          user.ID,
			"email":       user.Email,
			"nome":        user.Nome,
			"role":        user.Role,
			"permissions": models.PermissionsFor(user.Role),
		},
	}, nil)
}

// ValidateSession возвращает данные админа по токену из Authorization.
func (h *AuthHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetAdminIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid session")
		return
	}

	user, err := h.authService.GetAdminByID(r.Context(), adminID)
	if err != nil {
		if errors.Is(err, services.ErrAdminUserNotFound) {
			unauthorizedResponse(w, r, "invalid session")
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success": true,
		"user": jsonResponse{
			"id":          user.ID,
			"email":       user.Email,
			"nome":        user.Nome,
			"role":        user.Role,
			"permissions": models.PermissionsFor(user.Role),
		},
	}, nil)
}

// CreateAdmin регистрирует нового админ-пользователя.
func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var input services.CreateAdminInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.CreateAdmin(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"success": true, "user": user}, nil)
}

// ListAdmins возвращает всех админ-пользователей.
func (h *AuthHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListAdmins(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "users": users}, nil)
}

func (h *AuthHandler) generateToken(user *models.AdminUser) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"nome":    user.Nome,
		"email":   user.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
