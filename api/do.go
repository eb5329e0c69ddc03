package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error is the caller-facing failure for an API request. Message holds the
// server-provided message when one was sent, otherwise the operation's
// fallback copy, so err.Error() is directly presentable to a user.
type Error struct {
	StatusCode int    // HTTP status, zero when the request never reached the server
	Message    string // User-facing message
	Err        error  // Underlying transport error, if any
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Do performs a JSON round-trip against the API. A non-2xx response or a
// transport failure becomes an *Error carrying the server's message when one
// was provided, or fallback otherwise. When out is non-nil the success body
// is decoded into it.
func Do(ctx context.Context, hc *http.Client, method, url string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "[api.Do] marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "[api.Do] new request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &Error{Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fallback, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return responseError(resp.StatusCode, data, fallback)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "[api.Do] decode response")
		}
	}
	return nil
}

// responseError prefers the message in the response body over the fallback.
func responseError(status int, body []byte, fallback string) *Error {
	message := fallback
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && strings.TrimSpace(er.Message) != "" {
		message = er.Message
	}
	return &Error{StatusCode: status, Message: message}
}
