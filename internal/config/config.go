package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// envPrefix namespaces every environment variable, e.g. DROP_API_URL.
const envPrefix = "DROP"

// Config holds everything the client reads from the environment.
type Config struct {
	// APIURL is the base URL of the drop API.
	APIURL string `envconfig:"API_URL" default:"http://localhost:8080"`

	// CredentialsFile is where tokens and the user record are persisted
	// between runs. Empty means the default ~/.drop/credentials.json.
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// GoogleClientID and GoogleClientSecret identify the OAuth application
	// used to fetch a Google sign-in credential. Optional; without them the
	// google flow expects a pre-obtained credential.
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
}

// New reads the configuration from the environment.
func New() (*Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return nil, errors.Wrap(err, "[config.New] envconfig.Process")
	}
	return &c, nil
}

// CredentialsPath resolves the credentials file location, defaulting to
// ~/.drop/credentials.json when no override is configured.
func (c *Config) CredentialsPath() (string, error) {
	if c.CredentialsFile != "" {
		return c.CredentialsFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "[Config.CredentialsPath] user home dir")
	}
	return filepath.Join(home, ".drop", "credentials.json"), nil
}
