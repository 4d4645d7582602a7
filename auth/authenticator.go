package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"task-manager/models"
	"task-manager/router"
)

// UserFinder resolves a user from its id and one of its session tokens
type UserFinder interface {
	FindByToken(ctx context.Context, id, token string) (*models.User, error)
}

// Authenticator checks bearer tokens against the issuing user's token list
type Authenticator struct {
	tokens *TokenManager
	users  UserFinder
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(tokens *TokenManager, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Check implements httpserver.AuthCallback. A request is authenticated when it
// carries a valid, unexpired token that is still in its user's token list.
// Client is the user id and Claims the *models.User.
func (a *Authenticator) Check(r *http.Request) (bool, httpserver.RequestAuth) {
	token, ok := BearerToken(r)
	if !ok {
		return false, httpserver.RequestAuth{}
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		logger.Debug("Rejected session token", zap.Error(err))
		return false, httpserver.RequestAuth{}
	}

	user, err := a.users.FindByToken(r.Context(), claims.UserID, token)
	if err != nil {
		logger.Debug("No user for session token", zap.String("user_id", claims.UserID), zap.Error(err))
		return false, httpserver.RequestAuth{}
	}

	return true, httpserver.RequestAuth{
		Type:   router.AuthBearer,
		Client: user.ID,
		Claims: user,
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}
