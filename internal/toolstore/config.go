package toolstore

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config identifies the tool namespace and user against the Tool Store
// Developer API. All values are injected by the host at activation.
type Config struct {
	// APIBase is the base URL for the Developer API.
	APIBase string `envconfig:"API_BASE" default:"https://api.toolstore.com/dev_api/v1"`

	// JWT is the host-injected token authenticating the current user session.
	JWT string `envconfig:"JWT"`

	DevSlug  string `envconfig:"DEV_SLUG"`
	ToolSlug string `envconfig:"TOOL_SLUG"`
	UserID   string `envconfig:"USER_ID"`
	UserSlug string `envconfig:"USER_SLUG"`

	// TokenEndpoint is the optional URL for exchanging refresh tokens.
	// When empty, token refresh is unavailable and expired credentials
	// require re-activation.
	TokenEndpoint string `envconfig:"OAUTH_TOKEN_ENDPOINT"`

	// Provider is the OAuth provider key inside the user data document.
	Provider string `envconfig:"OAUTH_PROVIDER" default:"google"`
}

// ConfigFromEnv loads the configuration from TOOLSTORE_* environment
// variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("toolstore", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load toolstore config: %w", err)
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	return cfg, nil
}

// Validate checks that every identity the Developer API requires is present.
func (c Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"TOOLSTORE_JWT", c.JWT},
		{"TOOLSTORE_DEV_SLUG", c.DevSlug},
		{"TOOLSTORE_TOOL_SLUG", c.ToolSlug},
		{"TOOLSTORE_USER_ID", c.UserID},
		{"TOOLSTORE_USER_SLUG", c.UserSlug},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
