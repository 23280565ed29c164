package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeDirectory struct {
	byEmail map[string]*models.CredentialedUser
	err     error
}

func (d *fakeDirectory) FindCredentialedUser(_ context.Context, email string) (*models.CredentialedUser, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.byEmail[email], nil
}

func (d *fakeDirectory) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	for _, u := range d.byEmail {
		if u.ID == id {
			c := u.User
			return &c, nil
		}
	}
	return nil, nil
}

type fakeTokens struct {
	issued map[string]uuid.UUID
}

func (f *fakeTokens) Issue(u *models.User) (string, error) {
	token := "token-" + u.ID.String()
	f.issued[token] = u.ID
	return token, nil
}

func (f *fakeTokens) Verify(token string) (uuid.UUID, error) {
	id, ok := f.issued[token]
	if !ok {
		return uuid.Nil, apperr.ErrUnauthorized.With("invalid token")
	}
	return id, nil
}

func newTestAuthService(t *testing.T) (AuthService, *fakeDirectory, *fakeTokens, *models.CredentialedUser) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.CredentialedUser{
		User:         models.User{ID: uuid.New(), Email: "boris@example.com", Name: "boris", Role: models.RoleResponder},
		PasswordHash: string(hash),
	}
	dir := &fakeDirectory{byEmail: map[string]*models.CredentialedUser{user.Email: user}}
	tokens := &fakeTokens{issued: make(map[string]uuid.UUID)}
	return NewAuthService(dir, tokens, logger.Discard()), dir, tokens, user
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name          string
		email         string
		password      string
		expectedError error
	}{
		{name: "valid credentials", email: " boris@example.com ", password: "s3cret"},
		{name: "wrong password", email: "boris@example.com", password: "guess", expectedError: apperr.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "s3cret", expectedError: apperr.ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Подготовка
			svc, _, tokens, user := newTestAuthService(t)

			// Действие
			token, u, err := svc.Login(context.Background(), tc.email, tc.password)

			// Проверки
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, u.ID)
			assert.Equal(t, user.ID, tokens.issued[token])
		})
	}
}

func TestLogin_StorageFailure(t *testing.T) {
	svc, dir, _, _ := newTestAuthService(t)
	dir.err = errors.New("pool exhausted")

	_, _, err := svc.Login(context.Background(), "boris@example.com", "s3cret")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	svc, dir, _, user := newTestAuthService(t)
	ctx := context.Background()
	token, _, err := svc.Login(ctx, user.Email, "s3cret")
	require.NoError(t, err)

	actor, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: user.ID, Role: models.RoleResponder, Name: "boris"}, actor)

	_, err = svc.Authenticate(ctx, "forged")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// пользователь удален после выдачи токена
	delete(dir.byEmail, user.Email)
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
