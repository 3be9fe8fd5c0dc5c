package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/apexdefense/agd/gateway"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
)

// Login exchanges credentials for a token, fetches the account and stores
// it in the session, then moves to the dashboard. On failure the session
// and the held token are left as they were.
func (a *App) Login(ctx context.Context, email, password string) (*models.User, error) {
	prev, err := a.Gateway.Token()
	if err != nil {
		return nil, a.fail("Login failed", err)
	}
	if _, err := a.Gateway.Login(ctx, email, password); err != nil {
		return nil, a.fail("Login failed", err)
	}
	u, err := a.Gateway.CurrentUser(ctx)
	if err != nil {
		// The new token has no account behind it; put back the one the
		// session was using, or none. A 401 has already logged out both.
		if !errors.Is(err, gateway.ErrUnauthorized) {
			if restoreErr := a.Gateway.SetToken(prev); restoreErr != nil {
				a.logger.Error("restoring token after failed login", "error", restoreErr)
			}
		}
		return nil, a.fail("Login failed", err)
	}
	if err := a.Session.SetUser(u); err != nil {
		return nil, a.fail("Login failed", err)
	}
	a.logger.Info("logged in", "user", u.Email, "role", u.Role)
	if _, err := a.Mount(routes.Dashboard); err != nil {
		return u, err
	}
	return u, nil
}

// Register creates an account and logs into it.
func (a *App) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	if _, err := a.Gateway.Register(ctx, in); err != nil {
		return nil, a.fail("Registration failed", err)
	}
	return a.Login(ctx, in.Email, in.Password)
}

// Logout drops the token and the session locally and returns to the login
// view. The backend is not contacted. Logging out twice has the same effect
// as logging out once.
func (a *App) Logout() error {
	if err := a.Gateway.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := a.Session.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.resetData()
	if _, err := a.Replace(routes.Login); err != nil {
		return err
	}
	return nil
}

// RefreshUser re-reads the account behind the held token into the session.
func (a *App) RefreshUser(ctx context.Context) (*models.User, error) {
	u, err := a.Gateway.CurrentUser(ctx)
	if err != nil {
		return nil, a.fail("Loading profile failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	if err := a.Session.SetUser(u); err != nil {
		return nil, err
	}
	return u, nil
}
