package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ad-funnel-gate/model"
)

const userDataPath = "/rest/v1/users_data"

type newUserData struct {
	UserID     string              `json:"user_id"`
	Ads        []model.UserAd      `json:"ads"`
	Countdown  int                 `json:"countdown"`
	ShortLinks []model.UserLink    `json:"short_links"`
	Analytics  model.UserAnalytics `json:"analytics"`
}

// GetUserData returns the bundle of a user.
func (c *Client) GetUserData(ctx context.Context, userID string) (model.UserData, error) {
	var rows []model.UserData
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   userDataPath,
		query:  url.Values{"select": {"*"}, "user_id": {eq(userID)}, "limit": {"1"}},
	}, &rows)
	if err != nil {
		return model.UserData{}, err
	}
	if len(rows) == 0 {
		return model.UserData{}, fmt.Errorf("user data %s: %w", userID, ErrNotFound)
	}
	return fillUserData(rows[0]), nil
}

// CreateUserData inserts a bundle.
func (c *Client) CreateUserData(ctx context.Context, data model.UserData) (model.UserData, error) {
	var rows []model.UserData
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   userDataPath,
		body: newUserData{
			UserID:     data.UserID,
			Ads:        data.Ads,
			Countdown:  data.Countdown,
			ShortLinks: data.ShortLinks,
			Analytics:  data.Analytics,
		},
		prefer: representation,
	}, &rows)
	if err != nil {
		return model.UserData{}, err
	}
	if len(rows) == 0 {
		return data, nil
	}
	return fillUserData(rows[0]), nil
}

// UpdateUserData applies patch to the bundle of userID.
func (c *Client) UpdateUserData(ctx context.Context, userID string, patch model.UserDataPatch) error {
	var rows []model.UserData
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   userDataPath,
		query:  url.Values{"user_id": {eq(userID)}},
		body:   patch,
		prefer: representation,
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("user data %s: %w", userID, ErrNotFound)
	}
	return nil
}

// DeleteUserData removes the bundle of userID.
func (c *Client) DeleteUserData(ctx context.Context, userID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   userDataPath,
		query:  url.Values{"user_id": {eq(userID)}},
	}, nil)
}

// ListUserData returns every bundle, newest first.
func (c *Client) ListUserData(ctx context.Context) ([]model.UserData, error) {
	var rows []model.UserData
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   userDataPath,
		query:  url.Values{"select": {"*"}, "order": {"created_at.desc"}},
	}, &rows)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = fillUserData(rows[i])
	}
	return rows, nil
}

// fillUserData replaces null collections with empty ones.
func fillUserData(d model.UserData) model.UserData {
	if d.Ads == nil {
		d.Ads = []model.UserAd{}
	}
	if d.ShortLinks == nil {
		d.ShortLinks = []model.UserLink{}
	}
	if d.Analytics.PopularLinks == nil {
		d.Analytics.PopularLinks = []model.PopularLink{}
	}
	if d.Analytics.AdPerformance == nil {
		d.Analytics.AdPerformance = []model.AdPerformance{}
	}
	return d
}
