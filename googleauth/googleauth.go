// Package googleauth obtains a Google identity credential for
// client.LoginWithGoogle. It runs the OAuth 2.0 authorization-code flow with
// PKCE against Google's OIDC endpoints, catching the redirect on a loopback
// listener the way native apps do. The caller's only job is opening the
// prompted URL in a browser.
package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	defaultIssuer = "https://accounts.google.com"
	callbackPath  = "/callback"
)

// signedInPage is served to the browser once the redirect has been caught.
const signedInPage = `<!DOCTYPE html>
<html><head><title>Signed in</title></head>
<body><p>Signed in. You can close this window and return to the terminal.</p></body></html>`

// Flow drives a single interactive Google sign-in.
type Flow struct {
	clientID     string
	clientSecret string
	issuer       string
	log          zerolog.Logger
	prompt       func(authURL string)
	httpClient   *http.Client
}

// Option defines a function type to modify the Flow instance.
type Option func(*Flow)

// WithIssuer points the flow at a different OIDC issuer (primarily for
// testing).
func WithIssuer(issuer string) Option {
	return func(f *Flow) {
		f.issuer = issuer
	}
}

// WithLogger routes the flow's diagnostics to the given logger.
func WithLogger(log zerolog.Logger) Option {
	return func(f *Flow) {
		f.log = log
	}
}

// WithPromptFunc replaces how the authorization URL is handed to the user.
// The default prints it to stdout.
func WithPromptFunc(fn func(authURL string)) Option {
	return func(f *Flow) {
		if fn != nil {
			f.prompt = fn
		}
	}
}

// WithHTTPClient sets the client used for discovery and the token exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Flow) {
		f.httpClient = hc
	}
}

// New creates a Flow for the given OAuth client. The secret may be empty for
// client types Google issues none for.
func New(clientID, clientSecret string, options ...Option) (*Flow, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("[googleauth.New] clientID is required")
	}

	f := &Flow{
		clientID:     clientID,
		clientSecret: clientSecret,
		issuer:       defaultIssuer,
		log:          zerolog.Nop(),
		prompt: func(authURL string) {
			fmt.Fprintf(os.Stdout, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
		},
	}

	for _, opt := range options {
		opt(f)
	}

	return f, nil
}

// Credential runs the sign-in and returns the raw ID token, verified against
// the issuer's keys. It blocks until the browser hits the loopback redirect
// or ctx is done.
func (f *Flow) Credential(ctx context.Context) (string, error) {
	if f.httpClient != nil {
		ctx = oidc.ClientContext(ctx, f.httpClient)
	}

	provider, err := oidc.NewProvider(ctx, f.issuer)
	if err != nil {
		return "", errors.Wrap(err, "[Flow.Credential] discover issuer")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", errors.Wrap(err, "[Flow.Credential] listen on loopback")
	}

	conf := &oauth2.Config{
		ClientID:     f.clientID,
		ClientSecret: f.clientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	state, err := randomState()
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)
	deliver := func(cb callback) {
		select {
		case results <- cb:
		default: // a second hit on the callback is ignored
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callback{err: errors.New("[Flow.Credential] state mismatch on redirect")})
		case q.Get("error") != "":
			http.Error(w, "authorization failed", http.StatusBadRequest)
			deliver(callback{err: errors.Errorf("[Flow.Credential] authorization failed: %s", q.Get("error"))})
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			deliver(callback{err: errors.New("[Flow.Credential] redirect carried no code")})
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, signedInPage)
			deliver(callback{code: q.Get("code")})
		}
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(ln) }()
	defer server.Close()

	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	f.prompt(authURL)
	f.log.Debug().Str("redirect", conf.RedirectURL).Msg("waiting for browser sign-in")

	var code string
	select {
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "[Flow.Credential] waiting for sign-in")
	case cb := <-results:
		if cb.err != nil {
			return "", cb.err
		}
		code = cb.code
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", errors.Wrap(err, "[Flow.Credential] exchange code")
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("[Flow.Credential] token response carried no id_token")
	}

	idVerifier := provider.Verifier(&oidc.Config{ClientID: f.clientID})
	if _, err := idVerifier.Verify(ctx, rawIDToken); err != nil {
		return "", errors.Wrap(err, "[Flow.Credential] verify id token")
	}

	f.log.Debug().Msg("google credential obtained")
	return rawIDToken, nil
}

// randomState returns an unguessable value binding the redirect to this
// flow instance.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "[googleauth] generate state")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
