package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"task-manager/auth"
	"task-manager/email"
	"task-manager/models"
	"task-manager/store"
)

// UserHandler handles signup, sessions and the caller's own profile
type UserHandler struct {
	users          *store.UserStore
	tokens         *auth.TokenManager
	notifier       *email.Notifier
	avatarMaxBytes int64
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *store.UserStore, tokens *auth.TokenManager, notifier *email.Notifier, avatarMaxBytes int64) *UserHandler {
	return &UserHandler{
		users:          users,
		tokens:         tokens,
		notifier:       notifier,
		avatarMaxBytes: avatarMaxBytes,
	}
}

// CreateUser handles POST /users - signup
func (h *UserHandler) CreateUser(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	}

	logRequest(ctx, "info", "Creating user", zap.String("email", user.Email))

	token, err := h.users.Register(ctx, user, h.tokens.Generate)
	if err != nil {
		respondError(ctx, w, err, "")
		return
	}

	h.notifier.SendWelcomeEmail(user.Email, user.Name)

	logRequest(ctx, "info", "User created successfully", zap.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: user, Token: token})
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me. Only name, email, password and age may be
// changed.
func (h *UserHandler) UpdateMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	var req models.UpdateUserRequest
	if err := decodePatch(r, models.AllowedUserUpdates, &req); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Updating user")

	updated, err := h.users.Update(ctx, user.ID, req)
	if err != nil {
		respondError(ctx, w, err, "User not found")
		return
	}

	logRequest(ctx, "info", "User updated successfully")
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMe handles DELETE /users/me. The caller's tasks and sessions go with
// the account.
func (h *UserHandler) DeleteMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	logRequest(ctx, "info", "Deleting user")

	removed, err := h.users.Delete(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err, "User not found")
		return
	}

	h.notifier.SendCancelationEmail(removed.Email, removed.Name)

	logRequest(ctx, "info", "User deleted successfully")
	writeJSON(w, http.StatusOK, removed)
}

func (h *UserHandler) issueToken(ctx context.Context, user *models.User) (string, error) {
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return "", err
	}
	if err := h.users.AddToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}
