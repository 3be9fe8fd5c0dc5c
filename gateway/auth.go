package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/apexdefense/agd/models"
)

// Login exchanges credentials for a bearer token using the form-encoded
// OAuth2 password flow. On success the token is held in memory and mirrored
// to durable storage. Credentials are sent as given. On failure the held
// token is left untouched.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok models.Token
	if err := c.do(req, "/auth/login", &tok, true); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response carried no access token", ErrAuthentication)
	}
	if err := c.SetToken(tok.AccessToken); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/register", in)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := c.do(req, "/auth/register", &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser returns the account the held token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.Request(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
