package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/09ahmad/drop-go/api"
	"github.com/09ahmad/drop-go/credstore"
	errs "github.com/09ahmad/drop-go/internal/errors"
	"github.com/09ahmad/drop-go/token"
)

// Fallback copy shown when the API fails a sign-in without a message of its
// own. The exact strings are part of the client's contract with its users.
const (
	loginFailedMsg       = "Invalid email or password"
	adminLoginFailedMsg  = "Invalid admin credentials"
	googleLoginFailedMsg = "Google login failed"
	refreshFailedMsg     = "Session expired"
)

// Login signs in a customer with their email and password. On success the
// token pair and the account record are persisted and the session user is
// replaced. On failure nothing is stored and the error message is the
// server's, or "Invalid email or password" when the server sent none.
func (c *Client) Login(ctx context.Context, email, password string) (*api.User, error) {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	var out api.SignInResponse
	in := api.SignInRequest{Username: email, Password: password}
	if err := api.Do(ctx, c.http, http.MethodPost, c.url(api.RouteSignIn), in, &out, loginFailedMsg); err != nil {
		return nil, err
	}

	if err := c.persistCredentials(out.User, out.AccessToken, out.RefreshToken); err != nil {
		return nil, err
	}
	c.session.SetUser(out.User)
	return out.User, nil
}

// AdminLogin signs in an administrator. Identical to Login except for the
// endpoint, the response key and the fallback message.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*api.User, error) {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	var out api.AdminSignInResponse
	in := api.SignInRequest{Username: email, Password: password}
	if err := api.Do(ctx, c.http, http.MethodPost, c.url(api.RouteAdminSignIn), in, &out, adminLoginFailedMsg); err != nil {
		return nil, err
	}

	if err := c.persistCredentials(out.Admin, out.AccessToken, out.RefreshToken); err != nil {
		return nil, err
	}
	c.session.SetUser(out.Admin)
	return out.Admin, nil
}

// LoginWithGoogle signs in with a Google identity credential obtained out of
// band (see the googleauth package). The credential is decoded locally and
// stored as the access token; there is no server round-trip, and Google
// sessions carry no refresh token.
func (c *Client) LoginWithGoogle(ctx context.Context, credential string) (*api.User, error) {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	if strings.TrimSpace(credential) == "" {
		return nil, &api.Error{Message: googleLoginFailedMsg, Err: errs.ErrInvalidToken}
	}
	claims, err := token.Decode(credential)
	if err != nil {
		return nil, &api.Error{Message: googleLoginFailedMsg, Err: err}
	}

	user := &api.User{
		ID:    claims.SubjectID(),
		Name:  claims.Name,
		Email: claims.Email,
		Role:  api.RoleClient,
	}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.LoginWithGoogle] marshal user")
	}
	if err := c.store.Set(credstore.AccessTokenKey, credential); err != nil {
		return nil, errors.Wrap(err, "[Client.LoginWithGoogle] store access token")
	}
	if err := c.store.Set(credstore.UserKey, string(data)); err != nil {
		return nil, errors.Wrap(err, "[Client.LoginWithGoogle] store user")
	}
	// Drop any refresh token left over from an earlier password session.
	if err := c.store.Remove(credstore.RefreshTokenKey); err != nil {
		return nil, errors.Wrap(err, "[Client.LoginWithGoogle] remove refresh token")
	}

	c.session.SetUser(user)
	return user, nil
}

// Logout tells the API to end the session when an access token is stored,
// then always clears the stored credentials and the session. Network
// failures are logged and swallowed; calling Logout signed out is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	if accessToken, err := c.store.Get(credstore.AccessTokenKey); err == nil && strings.TrimSpace(accessToken) != "" {
		if err := c.postLogout(ctx, accessToken); err != nil {
			c.log.Err(err).Msg("logout request failed")
		}
	}

	err := c.clearCredentials()
	c.session.Clear()
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] clear credentials")
	}
	return nil
}

// postLogout sends the sign-out request. The response body is ignored; a
// non-2xx status is reported for logging only.
func (c *Client) postLogout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(api.RouteLogout), nil)
	if err != nil {
		return errors.Wrap(err, "[Client.postLogout] new request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.postLogout]")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &api.Error{StatusCode: resp.StatusCode, Message: "logout rejected"}
	}
	return nil
}

// persistCredentials writes the token pair and the serialized account
// record. There is no transaction across the three keys; a failed write
// surfaces as an error and leaves the earlier writes in place.
func (c *Client) persistCredentials(user *api.User, accessToken, refreshToken string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Client] marshal user")
	}
	if err := c.store.Set(credstore.AccessTokenKey, accessToken); err != nil {
		return errors.Wrap(err, "[Client] store access token")
	}
	if err := c.store.Set(credstore.RefreshTokenKey, refreshToken); err != nil {
		return errors.Wrap(err, "[Client] store refresh token")
	}
	if err := c.store.Set(credstore.UserKey, string(data)); err != nil {
		return errors.Wrap(err, "[Client] store user")
	}
	return nil
}

// clearCredentials removes all three keys, attempting every removal even
// when one fails.
func (c *Client) clearCredentials() error {
	var firstErr error
	for _, key := range []string{credstore.AccessTokenKey, credstore.RefreshTokenKey, credstore.UserKey} {
		if err := c.store.Remove(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
