package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/storage"
	tu "github.com/desertthunder/reelx/internal/testing"
)

var goodCreds = models.Credentials{Email: "ann@example.com", Password: "secret1"}

func loginPayload() *models.Session {
	payload := []byte(`{"token":"tok-1","user":{"id":"u1","name":"Ann","email":"ann@example.com"},"expiresIn":3600}`)
	return &models.Session{Token: "tok-1", User: models.User{ID: "u1", Name: "Ann", Email: "ann@example.com"}, Payload: payload}
}

func TestLoginRestoreLogout(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()

	identity := &tu.MockIdentity{}
	identity.On("Login", mock.Anything, goodCreds).Return(loginPayload(), nil).Once()

	c := New(identity, st, nil)
	sess, err := c.Login(ctx, goodCreds)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.User.ID)
	assert.True(t, c.IsAuthenticated())

	raw, err := st.Get(ctx, storage.KeySession)
	require.NoError(t, err)
	assert.JSONEq(t, string(loginPayload().Payload), string(raw), "whole payload persisted")

	t.Run("restore in a new controller does not call login", func(t *testing.T) {
		fresh := &tu.MockIdentity{}
		restored, err := New(fresh, st, nil).Restore(ctx)
		require.NoError(t, err)
		require.NotNil(t, restored)
		assert.Equal(t, sess.User, restored.User)
		assert.Equal(t, "tok-1", restored.Token)
		fresh.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("logout clears the snapshot", func(t *testing.T) {
		require.NoError(t, c.Logout(ctx))
		assert.False(t, c.IsAuthenticated())
		assert.Nil(t, c.Current())

		restored, err := New(&tu.MockIdentity{}, st, nil).Restore(ctx)
		require.NoError(t, err)
		assert.Nil(t, restored)
	})

	identity.AssertExpectations(t)
}

func TestLoginValidation(t *testing.T) {
	tc := []struct {
		name  string
		creds models.Credentials
		field string
		msg   string
	}{
		{"missing email", models.Credentials{Password: "secret1"}, "email", "Email is required"},
		{"bad email", models.Credentials{Email: "ann@", Password: "secret1"}, "email", "Invalid email address"},
		{"missing password", models.Credentials{Email: "ann@example.com"}, "password", "Password is required"},
		{"short password", models.Credentials{Email: "ann@example.com", Password: "12345"}, "password", "Password must be at least 6 characters"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			identity := &tu.MockIdentity{}
			c := New(identity, storage.NewMemory(), nil)

			_, err := c.Login(context.Background(), tt.creds)

			var valErr *shared.ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, tt.msg, valErr.Message)
			identity.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("auth error passes through and no snapshot is written", func(t *testing.T) {
		st := storage.NewMemory()
		identity := &tu.MockIdentity{}
		identity.On("Login", mock.Anything, goodCreds).Return(nil, &shared.AuthError{Message: "Invalid credentials"})

		c := New(identity, st, nil)
		_, err := c.Login(ctx, goodCreds)
		assert.ErrorIs(t, err, shared.ErrAuthFailed)
		assert.Equal(t, "Invalid credentials", shared.UserMessage(err))
		assert.False(t, c.IsAuthenticated())

		_, err = st.Get(ctx, storage.KeySession)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("persist failure fails the login", func(t *testing.T) {
		identity := &tu.MockIdentity{}
		identity.On("Login", mock.Anything, goodCreds).Return(loginPayload(), nil)

		c := New(identity, &tu.FailingStorage{Err: storage.ErrBackend}, nil)
		_, err := c.Login(ctx, goodCreds)
		assert.ErrorIs(t, err, storage.ErrBackend)
		assert.False(t, c.IsAuthenticated())
	})

	t.Run("session without payload is encoded", func(t *testing.T) {
		st := storage.NewMemory()
		identity := &tu.MockIdentity{}
		identity.On("Login", mock.Anything, goodCreds).Return(&models.Session{Token: "t", User: models.User{ID: "9"}}, nil)

		_, err := New(identity, st, nil).Login(ctx, goodCreds)
		require.NoError(t, err)

		restored, err := New(nil, st, nil).Restore(ctx)
		require.NoError(t, err)
		assert.Equal(t, "9", restored.User.ID)
	})
}

func TestRestoreCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	for name, snapshot := range map[string]string{
		"not json": `{"token":`,
		"no token": `{"user":{"id":"u1"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			st := storage.NewMemory()
			require.NoError(t, st.Set(ctx, storage.KeySession, []byte(snapshot)))

			c := New(nil, st, nil)
			sess, err := c.Restore(ctx)
			require.NoError(t, err)
			assert.Nil(t, sess)
			assert.False(t, c.IsAuthenticated())

			_, err = st.Get(ctx, storage.KeySession)
			assert.ErrorIs(t, err, storage.ErrNotFound, "corrupt snapshot is cleared")
		})
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	good := models.Registration{Name: "Ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1", AcceptTerms: true}

	t.Run("valid registration reaches the identity API", func(t *testing.T) {
		identity := &tu.MockIdentity{}
		identity.On("Register", mock.Anything, good).Return(nil)

		c := New(identity, storage.NewMemory(), nil)
		require.NoError(t, c.Register(ctx, good))
		assert.False(t, c.IsAuthenticated(), "registering does not log in")
		identity.AssertExpectations(t)
	})

	tc := map[string]struct {
		mutate func(*models.Registration)
		msg    string
	}{
		"name":     {func(r *models.Registration) { r.Name = " " }, "Name is required"},
		"mismatch": {func(r *models.Registration) { r.ConfirmPassword = "secret2" }, "Passwords do not match"},
		"confirm":  {func(r *models.Registration) { r.ConfirmPassword = "" }, "Please confirm your password"},
		"terms":    {func(r *models.Registration) { r.AcceptTerms = false }, "You must accept the terms and conditions"},
	}
	for name, tt := range tc {
		t.Run(name, func(t *testing.T) {
			reg := good
			tt.mutate(&reg)
			identity := &tu.MockIdentity{}

			err := New(identity, storage.NewMemory(), nil).Register(ctx, reg)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, tt.msg, shared.UserMessage(err))
			identity.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestGate(t *testing.T) {
	ctx := context.Background()
	identity := &tu.MockIdentity{}
	identity.On("Login", mock.Anything, goodCreds).Return(loginPayload(), nil)
	c := New(identity, storage.NewMemory(), nil)

	to, redirect := c.Gate("/dashboard")
	assert.True(t, redirect)
	assert.Equal(t, LoginPath, to)

	_, redirect = c.Gate("/search")
	assert.False(t, redirect, "public routes are never gated")

	_, err := c.Login(ctx, goodCreds)
	require.NoError(t, err)
	_, redirect = c.Gate("/dashboard/settings")
	assert.False(t, redirect)
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	c := New(nil, storage.NewMemory(), nil)
	_, err = c.Claims()
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

	st := storage.NewMemory()
	require.NoError(t, st.Set(ctx, storage.KeySession, []byte(`{"token":"`+signed+`","user":{"id":"u1"}}`)))
	c = New(nil, st, nil)
	_, err = c.Restore(ctx)
	require.NoError(t, err)

	claims, err := c.Claims()
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}
