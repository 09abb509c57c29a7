package handlers

import (
	"net/http"

	"github.com/uniarchive/photoarchive/internal/accounts"
	"github.com/uniarchive/photoarchive/internal/apperr"
	"github.com/uniarchive/photoarchive/internal/auth"
	"github.com/uniarchive/photoarchive/models"
)

type AuthHandler struct {
	accounts *accounts.Service
}

func NewAuthHandler(svc *accounts.Service) *AuthHandler {
	return &AuthHandler{accounts: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully.",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful.",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFrom(r.Context())
	if !ident.Authenticated() {
		writeError(w, apperr.Unauthenticated("Access denied. Not authenticated."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": ident.User})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFrom(r.Context())
	if !ident.Authenticated() {
		writeError(w, apperr.Unauthenticated("Access denied. Not authenticated."))
		return
	}

	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), ident.User.ID, in.CurrentPassword, in.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errBody("Password changed successfully."))
}

func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID uint        `json:"userId"`
		Role   models.Role `json:"role"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.UserID == 0 || in.Role == "" {
		writeError(w, apperr.Validation("User ID and role are required."))
		return
	}

	if err := h.accounts.UpdateRole(r.Context(), in.UserID, in.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errBody("User role updated successfully."))
}
