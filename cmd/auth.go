package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/storage"
)

// AuthLogin signs in with the identity API and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireIdentity(); err != nil {
		return err
	}
	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	creds := models.Credentials{Email: cmd.String("email"), Password: cmd.String("password")}
	r.logger.Infof("signing in as %v", creds.Email)

	sess, err := app.session.Login(ctx, creds)
	if err != nil {
		return err
	}
	app.activity.Log(ctx, models.ActivityLogin, 0, sess.User.DisplayName())

	return r.writePlain("✓ Signed in as %s\n", sess.User.DisplayName())
}

// AuthRegister creates an account. The user still has to log in afterwards.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireIdentity(); err != nil {
		return err
	}
	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	confirm := cmd.String("confirm-password")
	if !cmd.IsSet("confirm-password") {
		confirm = cmd.String("password")
	}
	reg := models.Registration{
		Name:            cmd.String("name"),
		Email:           cmd.String("email"),
		Password:        cmd.String("password"),
		ConfirmPassword: confirm,
		AcceptTerms:     cmd.Bool("accept-terms"),
	}
	if err := app.session.Register(ctx, reg); err != nil {
		return err
	}
	app.activity.Log(ctx, models.ActivityRegister, 0, reg.Email)

	r.writePlain("✓ Account created for %s\n", reg.Email)
	r.writePlain("Run 'reelx auth login --email %s' to sign in\n", reg.Email)
	return nil
}

// AuthLogout clears the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	app, err := r.open(ctx)
	if err != nil {
		return err
	}
	if !app.session.IsAuthenticated() {
		return r.writePlain("Not signed in\n")
	}
	if err := app.session.Logout(ctx); err != nil {
		return err
	}
	app.activity.Log(ctx, models.ActivityLogout, 0, "")
	return r.writePlain("✓ Signed out\n")
}

type statusView struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	Subject       string       `json:"subject,omitempty"`
	IssuedAt      *time.Time   `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	SavedAt       *time.Time   `json:"saved_at,omitempty"`
}

func (r *Runner) status(ctx context.Context, app *appState) statusView {
	sess := app.session.Current()
	if sess == nil {
		return statusView{}
	}
	v := statusView{Authenticated: true, User: &sess.User}
	if snaps, ok := app.store.(*repositories.SnapshotRepository); ok {
		if at, err := snaps.UpdatedAt(ctx, storage.KeySession); err == nil {
			v.SavedAt = &at
		}
	}
	claims, err := app.session.Claims()
	if err != nil {
		r.logger.Debug("session token has no readable claims", "error", err)
		return v
	}
	v.Subject = claims.Subject
	if !claims.IssuedAt.IsZero() {
		v.IssuedAt = &claims.IssuedAt
	}
	if !claims.ExpiresAt.IsZero() {
		v.ExpiresAt = &claims.ExpiresAt
	}
	return v
}

// AuthStatus shows the current session and what its token says about itself.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	app, err := r.open(ctx)
	if err != nil {
		return err
	}
	v := r.status(ctx, app)

	if cmd.Bool("json") {
		return r.writeJSON(v, cmd.Bool("pretty"))
	}
	if !v.Authenticated {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	r.writePlain("User: %s <%s>\n", v.User.DisplayName(), v.User.Email)
	if v.SavedAt != nil {
		r.writePlain("Signed in: %s\n", v.SavedAt.Local().Format(time.RFC1123))
	}
	if v.ExpiresAt != nil {
		if time.Now().After(*v.ExpiresAt) {
			r.writePlain("Token expired: %s\n", v.ExpiresAt.Local().Format(time.RFC1123))
		} else {
			r.writePlain("Token expires: %s\n", v.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	return nil
}

// Dashboard prints the protected dashboard, or where to sign in when there is no session.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	app, err := r.open(ctx)
	if err != nil {
		return err
	}
	if to, redirect := app.session.Gate(session.ProtectedPaths[0]); redirect {
		return fmt.Errorf("%w: sign in first (%s)", shared.ErrNotAuthenticated, to)
	}

	activity, err := app.activity.Recent(ctx, 10)
	if err != nil {
		r.logger.Warn("failed to load activity", "error", err)
	}
	v := struct {
		statusView
		Watchlist []int              `json:"watchlist"`
		Favorites []int              `json:"favorites"`
		Activity  []*models.Activity `json:"activity"`
	}{r.status(ctx, app), app.library.Watchlist(), app.library.Favorites(), activity}

	if cmd.Bool("json") {
		return r.writeJSON(v, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Welcome back, " + v.User.DisplayName())
	r.writePlain("Watchlist: %d movies\n", len(v.Watchlist))
	r.writePlain("Favorites: %d movies\n", len(v.Favorites))
	if len(activity) > 0 {
		r.writePlainln("Recent activity:")
		for _, a := range activity {
			r.writePlain("  %s\n", a)
		}
	}
	return nil
}
