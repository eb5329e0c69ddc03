package client

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/09ahmad/drop-go/credstore"
	errs "github.com/09ahmad/drop-go/internal/errors"
	"github.com/09ahmad/drop-go/token"
)

var _ http.RoundTripper = (*authTransport)(nil)

// authTransport decorates the base transport with bearer-token handling:
// before each request it reads the stored access token, refreshes it when
// expired, and attaches it. Requests without a usable token go out
// unauthenticated; only a failed refresh aborts the request, by which point
// the session has already been reset.
type authTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Request-Id", uuid.New().String())

	raw, err := t.client.store.Get(credstore.AccessTokenKey)
	if err != nil || strings.TrimSpace(raw) == "" {
		return t.base.RoundTrip(out)
	}

	claims, err := token.Decode(raw)
	if err != nil {
		// An undecodable token is skipped, not fatal; the server decides.
		t.client.log.Warn().Err(err).Msg("stored access token unreadable, sending request unauthenticated")
		return t.base.RoundTrip(out)
	}

	if claims.Expired(t.client.nowFunc()) {
		if err := t.client.RefreshTokens(req.Context()); err != nil {
			// A rejected exchange has already torn the session down; a
			// missing refresh token fails fast without doing so.
			if errs.Is(err, errs.ErrNoRefreshToken) {
				t.client.expireSession()
			}
			return nil, errs.Wrapf(err, "[authTransport] refresh")
		}
		raw, err = t.client.store.Get(credstore.AccessTokenKey)
		if err != nil {
			return nil, errs.Wrapf(err, "[authTransport] read refreshed token")
		}
	}

	out.Header.Set("Authorization", "Bearer "+raw)
	return t.base.RoundTrip(out)
}
