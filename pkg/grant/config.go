package grant

import (
	"time"

	"github.com/grantkit/grantkit/pkg/scopes"
)

// Config carries the server-side grant policy. It is read-only and injected
// into New; nothing in this package reads configuration globally.
type Config struct {
	// DefaultScopes is the space-separated server default scope list, used
	// when a client has no registered scopes of its own.
	DefaultScopes string `env:"GRANT_DEFAULT_SCOPES" envDefault:""`

	// AccessTokenTTL bounds issued token lifetime. Zero disables expiry.
	AccessTokenTTL time.Duration `env:"GRANT_ACCESS_TOKEN_TTL" envDefault:"2h"`

	// RefreshTokensEnabled asks stores to issue refresh tokens alongside
	// access tokens.
	RefreshTokensEnabled bool `env:"GRANT_REFRESH_TOKENS_ENABLED" envDefault:"false"`
}

// serverScopes returns the parsed server default scope list.
func (c Config) serverScopes() []string {
	return scopes.Parse(c.DefaultScopes)
}

// refreshPolicy derives the per-issuance policy handed to the TokenStore.
func (c Config) refreshPolicy() RefreshPolicy {
	return RefreshPolicy{
		IssueRefreshToken: c.RefreshTokensEnabled,
		AccessTokenTTL:    c.AccessTokenTTL,
	}
}
