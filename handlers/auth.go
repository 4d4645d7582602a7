package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"task-manager/auth"
	"task-manager/models"
	"task-manager/store"
)

// Login handles POST /users/login. Failures never reveal whether the email
// or the password was wrong.
func (h *UserHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Login request")

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, &AuthenticationError{Message: "Unable to login"}, "")
		return
	}

	user, err := h.users.FindByCredentials(ctx, req.Email, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		respondError(ctx, w, &AuthenticationError{Message: "Unable to login"}, "")
		return
	}
	if err != nil {
		respondError(ctx, w, err, "")
		return
	}

	token, err := h.issueToken(ctx, user)
	if err != nil {
		respondError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Login successful", zap.String("user_id", user.ID))
	writeJSON(w, http.StatusOK, models.AuthResponse{User: user, Token: token})
}

// Logout handles POST /users/logout - revokes the token of this request only
func (h *UserHandler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)
	token, _ := auth.BearerToken(r)

	if err := h.users.RemoveToken(ctx, user.ID, token); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Logged out")
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll - revokes every session of the caller
func (h *UserHandler) LogoutAll(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	if err := h.users.ClearTokens(ctx, user.ID); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Logged out of all sessions")
	w.WriteHeader(http.StatusOK)
}
