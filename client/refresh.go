package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/09ahmad/drop-go/api"
	"github.com/09ahmad/drop-go/credstore"
	errs "github.com/09ahmad/drop-go/internal/errors"
	"github.com/09ahmad/drop-go/token"
)

// RefreshTokens exchanges the stored refresh token for a fresh token pair.
// Concurrent callers share a single exchange. A missing refresh token fails
// immediately without touching the network or the stored state; a rejected
// exchange clears the credentials, signs the session out and invokes the
// session-expired handler.
func (c *Client) RefreshTokens(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.refreshTokens(ctx)
	})
	return err
}

func (c *Client) refreshTokens(ctx context.Context) error {
	refreshToken, err := c.store.Get(credstore.RefreshTokenKey)
	if err != nil || strings.TrimSpace(refreshToken) == "" {
		return errs.Wrapf(errs.ErrNoRefreshToken, "[Client.RefreshTokens]")
	}

	var out api.RefreshResponse
	in := api.RefreshRequest{RefreshToken: refreshToken}
	if err := api.Do(ctx, c.http, http.MethodPost, c.url(api.RouteRefreshToken), in, &out, refreshFailedMsg); err != nil {
		c.expireSession()
		return err
	}

	if err := c.store.Set(credstore.AccessTokenKey, out.AccessToken); err != nil {
		return errors.Wrap(err, "[Client.RefreshTokens] store access token")
	}
	if err := c.store.Set(credstore.RefreshTokenKey, out.RefreshToken); err != nil {
		return errors.Wrap(err, "[Client.RefreshTokens] store refresh token")
	}

	c.log.Debug().Msg("access token refreshed")
	return nil
}

// Token returns an access token that is valid right now, refreshing first
// when the stored one has expired. It errors when nothing is stored, the
// stored token cannot be decoded, or the refresh fails; it never returns an
// expired token.
func (c *Client) Token(ctx context.Context) (string, error) {
	raw, err := c.store.Get(credstore.AccessTokenKey)
	if err != nil || strings.TrimSpace(raw) == "" {
		return "", errs.Wrapf(errs.ErrNotAuthenticated, "[Client.Token]")
	}

	claims, err := token.Decode(raw)
	if err != nil {
		return "", errs.Wrapf(err, "[Client.Token]")
	}
	if !claims.Expired(c.nowFunc()) {
		return raw, nil
	}

	if err := c.RefreshTokens(ctx); err != nil {
		return "", err
	}

	refreshed, err := c.store.Get(credstore.AccessTokenKey)
	if err != nil {
		return "", errs.Wrapf(err, "[Client.Token] read refreshed token")
	}
	return refreshed, nil
}

// expireSession resets to signed-out after an irrecoverable refresh failure
// and hands control to the registered handler.
func (c *Client) expireSession() {
	c.resetState()
	c.log.Warn().Msg("session expired")
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// resetState clears storage and the session without invoking the handler.
func (c *Client) resetState() {
	if err := c.clearCredentials(); err != nil {
		c.log.Err(err).Msg("clearing credentials")
	}
	c.session.Clear()
}
