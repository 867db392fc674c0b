package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ad-funnel-gate/model"

	"github.com/rs/zerolog/log"
)

const (
	linksPath      = "/rest/v1/short_links"
	clickRetries   = 5
	representation = "return=representation"
)

type newLink struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	ClickCount  int    `json:"click_count"`
	UserID      string `json:"user_id,omitempty"`
}

// ListLinks returns every short link, newest first.
func (c *Client) ListLinks(ctx context.Context) ([]model.ShortLink, error) {
	var links []model.ShortLink
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   linksPath,
		query:  url.Values{"select": {"*"}, "order": {"created_at.desc"}},
	}, &links)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// LinkByCode returns the link with the given code.
func (c *Client) LinkByCode(ctx context.Context, code string) (model.ShortLink, error) {
	var links []model.ShortLink
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   linksPath,
		query:  url.Values{"select": {"*"}, "short_code": {eq(code)}, "limit": {"1"}},
	}, &links)
	if err != nil {
		return model.ShortLink{}, err
	}
	if len(links) == 0 {
		return model.ShortLink{}, fmt.Errorf("short link %s: %w", code, ErrNotFound)
	}
	return links[0], nil
}

// CodeExists reports whether a short code is taken.
func (c *Client) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := c.LinkByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateLink inserts a short link with a zero click count.
func (c *Client) CreateLink(ctx context.Context, code, originalURL, userID string) (model.ShortLink, error) {
	var created []model.ShortLink
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   linksPath,
		body:   newLink{ShortCode: code, OriginalURL: originalURL, UserID: userID},
		prefer: representation,
	}, &created)
	if err != nil {
		return model.ShortLink{}, err
	}
	if len(created) == 0 {
		return model.ShortLink{ShortCode: code, OriginalURL: originalURL, UserID: userID}, nil
	}
	return created[0], nil
}

// DeleteLink removes a short link by id and returns the removed row.
func (c *Client) DeleteLink(ctx context.Context, id string) (model.ShortLink, error) {
	var deleted []model.ShortLink
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   linksPath,
		query:  url.Values{"id": {eq(id)}},
		prefer: representation,
	}, &deleted)
	if err != nil {
		return model.ShortLink{}, err
	}
	if len(deleted) == 0 {
		return model.ShortLink{}, fmt.Errorf("short link %s: %w", id, ErrNotFound)
	}
	return deleted[0], nil
}

// IncrementClicks adds one to a link's click count. The update only applies
// when the count is unchanged since it was read, and is retried otherwise.
func (c *Client) IncrementClicks(ctx context.Context, code string, seen int) (int, error) {
	current := seen
	for attempt := 0; attempt < clickRetries; attempt++ {
		var updated []model.ShortLink
		err := c.do(ctx, request{
			method: http.MethodPatch,
			path:   linksPath,
			query: url.Values{
				"short_code":  {eq(code)},
				"click_count": {eq(strconv.Itoa(current))},
			},
			body:   map[string]int{"click_count": current + 1},
			prefer: representation,
		}, &updated)
		if err != nil {
			return 0, err
		}
		if len(updated) > 0 {
			return updated[0].ClickCount, nil
		}

		log.Debug().Str("short_code", code).Int("attempt", attempt+1).Msg("Click count changed concurrently, retrying")
		link, err := c.LinkByCode(ctx, code)
		if err != nil {
			return 0, err
		}
		current = link.ClickCount
	}
	return 0, fmt.Errorf("increment clicks for %s: %w", code, ErrConflict)
}

// CountLinksByUser counts the short links a user owns.
func (c *Client) CountLinksByUser(ctx context.Context, userID string) (int, error) {
	var ids []struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   linksPath,
		query:  url.Values{"select": {"id"}, "user_id": {eq(userID)}},
	}, &ids)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
