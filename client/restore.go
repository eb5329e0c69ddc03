package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/09ahmad/drop-go/api"
	"github.com/09ahmad/drop-go/credstore"
	errs "github.com/09ahmad/drop-go/internal/errors"
	"github.com/09ahmad/drop-go/token"
)

// Restore rebuilds the session from the credential store, typically at
// startup. It runs at most once per Client; the loading flag is up for the
// duration and always reset. A stored account with a live access token is
// restored as-is, an expired token triggers a refresh, and unreadable state
// clears all three keys.
func (c *Client) Restore(ctx context.Context) error {
	var err error
	c.restoreOnce.Do(func() { err = c.restore(ctx) })
	return err
}

func (c *Client) restore(ctx context.Context) error {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	storedUser, err := c.store.Get(credstore.UserKey)
	if err != nil && !errs.Is(err, credstore.ErrNotFound) {
		return errs.Wrapf(err, "[Client.Restore] read user")
	}
	raw, err := c.store.Get(credstore.AccessTokenKey)
	if err != nil && !errs.Is(err, credstore.ErrNotFound) {
		return errs.Wrapf(err, "[Client.Restore] read access token")
	}

	// Both the account record and a token are needed to restore anything.
	if strings.TrimSpace(storedUser) == "" || strings.TrimSpace(raw) == "" {
		return nil
	}

	var user api.User
	if err := json.Unmarshal([]byte(storedUser), &user); err != nil {
		c.log.Err(err).Msg("stored user unreadable, clearing credentials")
		c.resetState()
		return nil
	}

	// Optimistic: surface the stored account while the token is inspected.
	c.session.SetUser(&user)

	claims, err := token.Decode(raw)
	if err != nil {
		c.log.Err(err).Msg("stored access token unreadable, clearing credentials")
		c.resetState()
		return nil
	}

	if claims.Expired(c.nowFunc()) {
		if err := c.RefreshTokens(ctx); err != nil {
			c.resetState()
			return nil
		}
	}
	return nil
}
