package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/09ahmad/drop-go/internal/config"
	"github.com/stretchr/testify/require"
)

// TestNew_ReadsEnvironment tests that DROP_ prefixed variables are picked up
func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv("DROP_API_URL", "https://api.example.com")
	t.Setenv("DROP_CREDENTIALS_FILE", "/tmp/creds.json")
	t.Setenv("DROP_LOG_LEVEL", "debug")
	t.Setenv("DROP_GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("DROP_GOOGLE_CLIENT_SECRET", "client-secret")

	cfg, err := config.New()

	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", cfg.APIURL)
	require.Equal(t, "/tmp/creds.json", cfg.CredentialsFile)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "client-id", cfg.GoogleClientID)
	require.Equal(t, "client-secret", cfg.GoogleClientSecret)
}

// TestNew_Defaults tests the fallback values when nothing is configured
func TestNew_Defaults(t *testing.T) {
	// t.Setenv registers the restore; the variables must be genuinely
	// absent for the defaults to apply.
	for _, key := range []string{"DROP_API_URL", "DROP_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.New()

	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.APIURL)
	require.Equal(t, "info", cfg.LogLevel)
}

// TestCredentialsPath_Override tests that a configured file wins
func TestCredentialsPath_Override(t *testing.T) {
	cfg := &config.Config{CredentialsFile: "/tmp/elsewhere.json"}

	path, err := cfg.CredentialsPath()

	require.NoError(t, err)
	require.Equal(t, "/tmp/elsewhere.json", path)
}

// TestCredentialsPath_Default tests the home directory fallback
func TestCredentialsPath_Default(t *testing.T) {
	cfg := &config.Config{}

	path, err := cfg.CredentialsPath()

	require.NoError(t, err)
	require.Equal(t, filepath.Join(".drop", "credentials.json"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
