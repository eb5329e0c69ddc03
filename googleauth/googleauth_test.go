package googleauth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/09ahmad/drop-go/googleauth"
)

const (
	testClientID     = "drop-cli.apps.example.com"
	testClientSecret = "test-secret"
	testAuthCode     = "auth-code-1"
	testKeyID        = "test-key"
	testSubject      = "google-123"
	testEmail        = "jane@example.com"
)

// fakeIdP plays the Google side of the flow: discovery, the consent page
// (granting instantly via redirect), the token endpoint and the key set.
type fakeIdP struct {
	server  *httptest.Server
	key     *rsa.PrivateKey
	idToken string

	mu            sync.Mutex
	challenge     string // code_challenge captured from the consent request
	redirectState string // overrides the state echoed on the redirect
	redirectError string // redirects with an error instead of a code
	tokenCalls    int
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &fakeIdP{key: key}
	mux := http.NewServeMux()
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)

	issuer := p.server.URL
	p.idToken = p.signIDToken(t, issuer, testClientID)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"issuer":                                issuer,
			"authorization_endpoint":                issuer + "/auth",
			"token_endpoint":                        issuer + "/token",
			"jwks_uri":                              issuer + "/keys",
			"response_types_supported":              []string{"code"},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/auth", p.handleAuth)
	mux.HandleFunc("/token", p.handleToken)
	mux.HandleFunc("/keys", p.handleKeys)

	return p
}

// signIDToken issues an RS256 ID token for the fixture's key.
func (p *fakeIdP) signIDToken(t *testing.T, issuer, audience string) string {
	t.Helper()

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   issuer,
		"aud":   audience,
		"sub":   testSubject,
		"email": testEmail,
		"name":  "Jane Doe",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = testKeyID

	raw, err := tok.SignedString(p.key)
	require.NoError(t, err)
	return raw
}

func (p *fakeIdP) handleAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	p.mu.Lock()
	p.challenge = q.Get("code_challenge")
	state := q.Get("state")
	if p.redirectState != "" {
		state = p.redirectState
	}
	redirectError := p.redirectError
	p.mu.Unlock()

	redirect, err := url.Parse(q.Get("redirect_uri"))
	if err != nil {
		http.Error(w, "bad redirect_uri", http.StatusBadRequest)
		return
	}

	vals := url.Values{"state": []string{state}}
	if redirectError != "" {
		vals.Set("error", redirectError)
	} else {
		vals.Set("code", testAuthCode)
	}
	redirect.RawQuery = vals.Encode()
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

func (p *fakeIdP) handleToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	p.mu.Lock()
	p.tokenCalls++
	challenge := p.challenge
	p.mu.Unlock()

	if r.Form.Get("grant_type") != "authorization_code" || r.Form.Get("code") != testAuthCode {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}
	sum := sha256.Sum256([]byte(r.Form.Get("code_verifier")))
	if base64.RawURLEncoding.EncodeToString(sum[:]) != challenge {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": "access-1",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     p.idToken,
	})
}

func (p *fakeIdP) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": testKeyID,
			"n":   base64.RawURLEncoding.EncodeToString(p.key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(p.key.PublicKey.E)).Bytes()),
		}},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// runFlow drives a Credential call to completion, playing the browser by
// following the prompted URL.
func runFlow(t *testing.T, p *fakeIdP, options ...googleauth.Option) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	urls := make(chan string, 1)
	options = append([]googleauth.Option{
		googleauth.WithIssuer(p.server.URL),
		googleauth.WithPromptFunc(func(u string) { urls <- u }),
		googleauth.WithHTTPClient(p.server.Client()),
	}, options...)

	flow, err := googleauth.New(testClientID, testClientSecret, options...)
	require.NoError(t, err)

	type result struct {
		credential string
		err        error
	}
	done := make(chan result, 1)
	go func() {
		credential, err := flow.Credential(ctx)
		done <- result{credential, err}
	}()

	select {
	case authURL := <-urls:
		resp, err := http.Get(authURL)
		require.NoError(t, err)
		resp.Body.Close()
	case <-ctx.Done():
		t.Fatal("flow never prompted for the browser")
	}

	select {
	case res := <-done:
		return res.credential, res.err
	case <-ctx.Done():
		t.Fatal("flow never finished")
		return "", nil
	}
}

// TestNew_RequiresClientID tests constructor validation
func TestNew_RequiresClientID(t *testing.T) {
	_, err := googleauth.New("  ", testClientSecret)

	require.Error(t, err)
	require.Contains(t, err.Error(), "clientID is required")
}

// TestCredential_FullFlow tests the happy path end to end
func TestCredential_FullFlow(t *testing.T) {
	p := newFakeIdP(t)

	credential, err := runFlow(t, p)

	require.NoError(t, err)
	require.Equal(t, p.idToken, credential, "the raw id token is the credential")

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Equal(t, 1, p.tokenCalls)
	require.NotEmpty(t, p.challenge, "consent request must carry a PKCE challenge")
}

// TestCredential_StateMismatch tests that a tampered redirect is rejected
func TestCredential_StateMismatch(t *testing.T) {
	p := newFakeIdP(t)
	p.redirectState = "evil-state"

	_, err := runFlow(t, p)

	require.Error(t, err)
	require.Contains(t, err.Error(), "state mismatch")

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Zero(t, p.tokenCalls, "no exchange after a bad redirect")
}

// TestCredential_UserDenied tests the consent-denied redirect
func TestCredential_UserDenied(t *testing.T) {
	p := newFakeIdP(t)
	p.redirectError = "access_denied"

	_, err := runFlow(t, p)

	require.Error(t, err)
	require.Contains(t, err.Error(), "access_denied")
}

// TestCredential_WrongAudience tests that foreign id tokens fail verification
func TestCredential_WrongAudience(t *testing.T) {
	p := newFakeIdP(t)
	p.idToken = p.signIDToken(t, p.server.URL, "some-other-client")

	_, err := runFlow(t, p)

	require.Error(t, err)
	require.Contains(t, err.Error(), "verify id token")
}

// TestCredential_AuthURLShape tests the consent URL parameters
func TestCredential_AuthURLShape(t *testing.T) {
	p := newFakeIdP(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	urls := make(chan string, 1)
	flow, err := googleauth.New(testClientID, testClientSecret,
		googleauth.WithIssuer(p.server.URL),
		googleauth.WithPromptFunc(func(u string) { urls <- u }),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Credential(ctx)
		done <- err
	}()

	var authURL string
	select {
	case authURL = <-urls:
	case <-time.After(10 * time.Second):
		t.Fatal("flow never prompted for the browser")
	}

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
	require.NotEmpty(t, q.Get("state"))
	require.True(t, strings.HasPrefix(q.Get("redirect_uri"), "http://127.0.0.1:"))
	require.Contains(t, q.Get("scope"), "openid")

	// Abandon the sign-in; the flow must come back with the context error.
	cancel()
	require.Error(t, <-done)
}
