package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/pkg/jwt"
	"github.com/MIDevJourney/invoice-analyzer/internal/repository"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := setupDB(t)
	users := repository.NewUserRepository(db, nil)
	return NewAuthService(nil, users, common.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "A@Example.com ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email, "email is normalized")
	assert.NotEmpty(t, token)

	claims, err := jwt.ParseToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)

	_, loginToken, err := svc.Login(ctx, "a@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@example.com", "hunter2")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRegisterRequiresInput(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.Register(context.Background(), "", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = svc.Register(context.Background(), "a@example.com", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
