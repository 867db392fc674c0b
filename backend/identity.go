package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"ad-funnel-gate/model"
)

// SignUp registers an end user. The username defaults to the local part of the email.
func (c *Client) SignUp(ctx context.Context, req model.SignUpRequest) (model.IdentitySession, error) {
	username := req.Username
	if username == "" {
		username = strings.SplitN(req.Email, "@", 2)[0]
	}
	body := map[string]interface{}{
		"email":    req.Email,
		"password": req.Password,
		"data":     map[string]string{"username": username},
	}

	var session model.IdentitySession
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/signup", body: body}, &session)
	return session, err
}

// SignIn exchanges an email and password for a session.
func (c *Client) SignIn(ctx context.Context, req model.SignInRequest) (model.IdentitySession, error) {
	var session model.IdentitySession
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   req,
	}, &session)
	return session, err
}

// SignOut revokes the session behind an access token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(WithAccessToken(ctx, token), request{method: http.MethodPost, path: "/auth/v1/logout"}, nil)
}
