package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	tu "github.com/desertthunder/reelx/internal/testing"
)

func identityServer(t *testing.T, handler http.HandlerFunc) *IdentityService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewIdentityService(NewAPIService(APIOptions{Name: "identity", BaseURL: server.URL}))
}

func TestIdentityService(t *testing.T) {
	ctx := context.Background()
	creds := models.Credentials{Email: "ann@example.com", Password: "secret1"}

	t.Run("Login success keeps the payload", func(t *testing.T) {
		payload := `{"token":"jwt.token.here","user":{"_id":"u1","name":"Ann","email":"ann@example.com"},"extra":true}`
		svc := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			var got models.Credentials
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, creds, got)
			w.Write([]byte(payload))
		})

		sess, err := svc.Login(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, "jwt.token.here", sess.Token)
		assert.Equal(t, "u1", sess.User.ID)
		assert.JSONEq(t, payload, string(sess.Payload))
	})

	t.Run("Login failure surfaces server message", func(t *testing.T) {
		svc := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`))
		})

		_, err := svc.Login(ctx, creds)
		assert.ErrorIs(t, err, shared.ErrAuthFailed)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.Equal(t, "Invalid email or password", shared.UserMessage(err))
	})

	t.Run("Login failure without message", func(t *testing.T) {
		svc := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := svc.Login(ctx, creds)
		assert.Equal(t, LoginFailed, shared.UserMessage(err))
	})

	t.Run("Login without token", func(t *testing.T) {
		svc := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":{"id":1}}`))
		})

		_, err := svc.Login(ctx, creds)
		assert.ErrorIs(t, err, shared.ErrAuthFailed)
		assert.Equal(t, LoginFailed, shared.UserMessage(err))
	})

	t.Run("Login network failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp: refused"))}
		svc := NewIdentityService(NewAPIService(APIOptions{BaseURL: "http://auth.invalid", Client: client}))

		_, err := svc.Login(ctx, creds)
		assert.ErrorIs(t, err, shared.ErrAuthFailed)
		assert.ErrorIs(t, err, shared.ErrNetwork)
		assert.Equal(t, LoginFailed, shared.UserMessage(err))
	})

	t.Run("Register", func(t *testing.T) {
		svc := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/register", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"name":"Ann","email":"ann@example.com","password":"secret1"}`, string(body))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"User registered"}`))
		})

		err := svc.Register(ctx, models.Registration{Name: "Ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1", AcceptTerms: true})
		assert.NoError(t, err)
	})

	t.Run("Register conflict", func(t *testing.T) {
		svc := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"User already exists"}`))
		})

		err := svc.Register(ctx, models.Registration{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, shared.ErrAuthFailed)
		assert.Equal(t, "User already exists", shared.UserMessage(err))
	})
}
