package handlers

import (
	"context"
	"net/http"

	"github.com/pribylovaa/go-news-portal/internal/http/apierrors"
	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/pribylovaa/go-news-portal/internal/service"
)

// registerRequest: тело POST /auth/register и /auth/register-admin.
// Обязательность и формат email проверяет сервис.
type registerRequest struct {
	Name     string `json:"name"     validate:"max=50" label:"Name"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"max=72" label:"Password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileRequest: PUT /auth/profile; отсутствующее поле не меняется.
type profileRequest struct {
	Name   *string `json:"name"   validate:"omitempty,max=50"   label:"Name"`
	Avatar *string `json:"avatar" validate:"omitempty,max=2048" label:"Avatar"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"              label:"Current password"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72" label:"Password"`
}

// authResponse: ответ регистрации и входа.
type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    any    `json:"user"`
}

// Register: POST /auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.svc.Register)
}

// RegisterAdmin: POST /auth/register-admin, только для администратора.
func (h *Handlers) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.svc.RegisterAdmin)
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, in service.RegisterInput) (*models.AuthResult, error)) {
	var in registerRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, err := fn(r.Context(), service.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Success: true, Token: res.Token, User: res.User})
}

// Login: POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: res.Token, User: res.User})
}

// Me: GET /auth/me.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	u, err := h.svc.Me(r.Context(), id.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(u))
}

// UpdateProfile: PUT /auth/profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	var in profileRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), id.UserID, in.Name, in.Avatar)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ok(u))
}

// ChangePassword: PUT /auth/password.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, authed := identity(w, r)
	if !authed {
		return
	}

	var in passwordRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), id.UserID, in.CurrentPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password updated successfully"})
}
