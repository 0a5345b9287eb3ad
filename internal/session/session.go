// Package session owns the authenticated identity and its persisted snapshot.
//
// A session is absent until [Controller.Login] succeeds or [Controller.Restore] finds a
// snapshot from an earlier run. It never expires on the client; only [Controller.Logout]
// ends it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/storage"
)

// LoginPath is where protected routes send unauthenticated visitors.
const LoginPath = "/login"

// ProtectedPaths require a session.
var ProtectedPaths = []string{"/dashboard"}

// Controller drives login, logout and restore, and gates protected routes.
type Controller struct {
	mu       sync.RWMutex
	identity services.Identity
	store    storage.Storage
	current  *models.Session
	logger   *log.Logger
}

// New builds a Controller with no session loaded. Call [Controller.Restore] at startup.
func New(identity services.Identity, store storage.Storage, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{identity: identity, store: store, logger: logger}
}

// Restore loads a persisted session, if any, without contacting the identity API.
//
// A snapshot that cannot be decoded, or has no token, is deleted and treated as absent.
func (c *Controller) Restore(ctx context.Context) (*models.Session, error) {
	data, err := c.store.Get(ctx, storage.KeySession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	sess, err := decodeSnapshot(data)
	if err != nil {
		c.logger.Warn("clearing corrupt session snapshot", "error", err)
		if delErr := c.store.Delete(ctx, storage.KeySession); delErr != nil {
			return nil, fmt.Errorf("clear corrupt session: %w", delErr)
		}
		return nil, nil
	}

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
	return sess.Clone(), nil
}

func decodeSnapshot(data []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCorruptSession, err)
	}
	if strings.TrimSpace(sess.Token) == "" {
		return nil, fmt.Errorf("%w: missing token", shared.ErrCorruptSession)
	}
	sess.Payload = append(json.RawMessage(nil), data...)
	return &sess, nil
}

// Login validates creds, authenticates, and persists the full response before returning.
//
// A failed persist fails the login and leaves the previous session in place.
func (c *Controller) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateForm(creds); err != nil {
		return nil, err
	}

	sess, err := c.identity.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	snapshot := []byte(sess.Payload)
	if len(snapshot) == 0 {
		if snapshot, err = json.Marshal(sess); err != nil {
			return nil, fmt.Errorf("encode session: %w", err)
		}
		sess.Payload = snapshot
	}
	if err := c.store.Set(ctx, storage.KeySession, snapshot); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	c.logger.Info("logged in", "user", sess.User.DisplayName())
	return sess.Clone(), nil
}

// Register validates reg and creates the account. It does not log in.
func (c *Controller) Register(ctx context.Context, reg models.Registration) error {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := validateForm(reg); err != nil {
		return err
	}
	return c.identity.Register(ctx, reg)
}

// Logout clears the in-memory session and the persisted snapshot.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	if err := c.store.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns a copy of the active session, or nil.
func (c *Controller) Current() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// IsAuthenticated reports whether a session is active.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// Gate returns the path to redirect to when path needs a session that is absent.
func (c *Controller) Gate(path string) (string, bool) {
	if !IsProtected(path) || c.IsAuthenticated() {
		return "", false
	}
	return LoginPath, true
}

// IsProtected reports whether path, or a parent of it, requires a session.
func IsProtected(path string) bool {
	for _, p := range ProtectedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Claims summarizes the session token for display.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims decodes the session token without verifying its signature.
//
// Expiry is informational; it does not end the session.
func (c *Controller) Claims() (*Claims, error) {
	sess := c.Current()
	if sess == nil {
		return nil, shared.ErrNotAuthenticated
	}

	tok, _, err := jwt.NewParser().ParseUnverified(sess.Token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	out := &Claims{}
	if sub, err := tok.Claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := tok.Claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := tok.Claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
