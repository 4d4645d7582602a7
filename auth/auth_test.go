package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/logger"

	"task-manager/config"
	"task-manager/models"
	"task-manager/store"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

const userID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

func newManager() *TokenManager {
	return NewTokenManager(config.JWTConfig{Secret: "test-secret", TTL: time.Hour})
}

func TestTokenManager_GenerateValidate(t *testing.T) {
	m := newManager()

	first, err := m.Generate(userID)
	require.NoError(t, err)
	second, err := m.Generate(userID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := m.Validate(first)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsBadTokens(t *testing.T) {
	m := newManager()
	token, err := m.Generate(userID)
	require.NoError(t, err)

	other := NewTokenManager(config.JWTConfig{Secret: "other-secret", TTL: time.Hour})
	_, err = other.Validate(token)
	assert.Error(t, err)

	_, err = m.Validate("not.a.token")
	assert.Error(t, err)

	expired := newManager()
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate(userID)
	require.NoError(t, err)
	_, err = m.Validate(old)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(unsigned)
	assert.Error(t, err)
}

type fakeUsers struct {
	user  *models.User
	token string
}

func (f *fakeUsers) FindByToken(ctx context.Context, id, token string) (*models.User, error) {
	if f.user == nil || id != f.user.ID || token != f.token {
		return nil, store.ErrNotFound
	}
	return f.user, nil
}

func TestAuthenticator_Check(t *testing.T) {
	m := newManager()
	token, err := m.Generate(userID)
	require.NoError(t, err)
	revoked, err := m.Generate(userID)
	require.NoError(t, err)

	user := &models.User{ID: userID, Name: "Mike"}
	a := NewAuthenticator(m, &fakeUsers{user: user, token: token})

	tests := []struct {
		name   string
		header string
		ok     bool
	}{
		{name: "valid", header: "Bearer " + token, ok: true},
		{name: "lowercase scheme", header: "bearer " + token, ok: true},
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic " + token},
		{name: "empty token", header: "Bearer  "},
		{name: "garbage", header: "Bearer garbage"},
		{name: "revoked", header: "Bearer " + revoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			ok, auth := a.Check(r)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "bearer", auth.Type)
				assert.Equal(t, userID, auth.Client)
				assert.Same(t, user, auth.Claims)

				presented, ok := BearerToken(r)
				require.True(t, ok)
				assert.Equal(t, token, presented)
			} else {
				assert.Nil(t, auth.Claims)
			}
		})
	}
}
