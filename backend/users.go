package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ad-funnel-gate/model"
)

const (
	profilesPath  = "/rest/v1/profiles"
	userRolesPath = "/rest/v1/user_roles"
)

// ListProfiles returns all user profiles.
func (c *Client) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   profilesPath,
		query:  url.Values{"select": {"id,username,email,created_at"}},
	}, &profiles)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// UserRole returns the role assigned to a user.
func (c *Client) UserRole(ctx context.Context, userID string) (string, error) {
	var rows []model.RoleAssignment
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   userRolesPath,
		query:  url.Values{"select": {"user_id,role"}, "user_id": {eq(userID)}, "limit": {"1"}},
	}, &rows)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("role of %s: %w", userID, ErrNotFound)
	}
	return rows[0].Role, nil
}

// SetUserRole replaces the role assignment of a user.
func (c *Client) SetUserRole(ctx context.Context, userID, role string) error {
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   userRolesPath,
		query:  url.Values{"user_id": {eq(userID)}},
	}, nil)
	if err != nil {
		return fmt.Errorf("clear role: %w", err)
	}
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   userRolesPath,
		body:   model.RoleAssignment{UserID: userID, Role: role},
	}, nil)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}
