package handlers

import (
	"context"
	"net/http"
	"time"

	"friends-server/middleware"
)

type TokenIssuer interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

type AuthHandler struct {
	auth TokenIssuer
}

func NewAuthHandler(auth TokenIssuer) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	token, exp, err := h.auth.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp})
}
