// Package credstore persists the signed-in credentials between runs. It is a
// passive key-value store: callers decide what the keys mean and when the
// values they hold expire.
package credstore

import "errors"

// Keys written by the auth flows. UserKey holds the JSON-serialized account
// record; the token keys hold the raw token strings.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user"
)

// ErrNotFound is returned by Get for keys with no stored value.
var ErrNotFound = errors.New("credential not found")

// Store is the persistence contract shared by the auth flows. Remove is a
// no-op for missing keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
