package grant

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResourceOwner is the identity a token is issued on behalf of. It is
// produced by an Authenticator and treated as opaque: the grant core stores
// and forwards it but never inspects its structure.
type ResourceOwner = any

// Request is the external input to one grant attempt. It is immutable once
// received; the pipeline derives its working state from a copy.
type Request struct {
	// GrantType selects the registered Authenticator.
	GrantType string

	// ClientID and ClientSecret identify the calling application.
	ClientID     string
	ClientSecret string

	// Credentials holds the variant-specific resource-owner credential
	// fields (e.g. key/secret, username/password). The core passes them to
	// the Authenticator verbatim.
	Credentials map[string]string

	// Scope is the space-separated requested scope list. Empty means
	// "default to the client's registered scopes".
	Scope string

	// Session optionally tags the token with a caller-defined session.
	Session string
}

// Client is a registered application allowed to request tokens.
type Client struct {
	ID     string
	Secret string

	// Scopes are the patterns this client may request; they double as its
	// default scope list when a request carries none.
	Scopes []string
}

// AccessToken is the issued credential. It is owned and persisted by the
// TokenStore; the grant core requests creation or lookup and never mutates
// a stored token.
type AccessToken struct {
	ID            uuid.UUID
	Token         string
	RefreshToken  string
	Owner         ResourceOwner
	ApplicationID string
	Scopes        []string
	Session       string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	RevokedAt     *time.Time
}

// Expired reports whether the token is past its expiry. A zero ExpiresAt
// means the token never expires.
func (t *AccessToken) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// Revoked reports whether the token has been revoked.
func (t *AccessToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Active reports whether the token is neither expired nor revoked.
func (t *AccessToken) Active() bool {
	return !t.Expired() && !t.Revoked()
}

// RefreshPolicy tells the TokenStore how to shape a newly created token.
type RefreshPolicy struct {
	// IssueRefreshToken requests a refresh token alongside the access token.
	IssueRefreshToken bool

	// AccessTokenTTL bounds the token lifetime. Zero means no expiry.
	AccessTokenTTL time.Duration
}

// Context is the state accumulated while one grant attempt moves through the
// pipeline. It is owned by a single run and never shared across requests.
type Context struct {
	Request Request
	Client  *Client
	Owner   ResourceOwner
	Scopes  []string
	Token   *AccessToken

	authenticator Authenticator
}

// OwnerKey derives a stable string identity for an opaque resource owner.
// Stores use it to match tokens by owner without understanding the owner
// type. Hosts with richer owner types should install their own via the
// store's options.
type OwnerKey func(owner ResourceOwner) string

// DefaultOwnerKey formats the owner with its dynamic type, which is exact
// for strings, integers, and small value structs.
func DefaultOwnerKey(owner ResourceOwner) string {
	return fmt.Sprintf("%T:%v", owner, owner)
}
