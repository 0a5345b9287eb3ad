package services

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// Fallback messages when the identity API gives no reason.
const (
	LoginFailed        = "Login failed"
	RegistrationFailed = "Registration failed"
)

// IdentityService implements [Identity] over the auth REST API.
type IdentityService struct {
	api *APIService
}

// NewIdentityService wraps an [APIService] pointed at the identity base URL.
func NewIdentityService(api *APIService) *IdentityService {
	return &IdentityService{api: api}
}

// Register calls POST /api/auth/register.
func (s *IdentityService) Register(ctx context.Context, reg models.Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return &shared.AuthError{Message: RegistrationFailed, Err: err}
	}
	resp, err := s.api.Post(ctx, "/api/auth/register", body)
	if err != nil {
		return &shared.AuthError{Message: RegistrationFailed, Err: err}
	}
	if err := resp.Err(); err != nil {
		return &shared.AuthError{Message: authMessage(resp.Body, RegistrationFailed), Err: err}
	}
	return nil
}

// Login calls POST /api/auth/login. A 2xx response without a token counts as a failure.
func (s *IdentityService) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, &shared.AuthError{Message: LoginFailed, Err: err}
	}
	resp, err := s.api.Post(ctx, "/api/auth/login", body)
	if err != nil {
		return nil, &shared.AuthError{Message: LoginFailed, Err: err}
	}
	if err := resp.Err(); err != nil {
		return nil, &shared.AuthError{Message: authMessage(resp.Body, LoginFailed), Err: err}
	}

	var sess models.Session
	if err := json.Unmarshal(resp.Body, &sess); err != nil {
		return nil, &shared.AuthError{Message: LoginFailed, Err: err}
	}
	if strings.TrimSpace(sess.Token) == "" {
		return nil, &shared.AuthError{Message: authMessage(resp.Body, LoginFailed)}
	}
	sess.Payload = append(json.RawMessage(nil), resp.Body...)
	return &sess, nil
}

// authMessage returns the body's "message" verbatim, or fallback.
func authMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}
