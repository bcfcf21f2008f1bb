package grant

import (
	"context"
	"fmt"
)

// ClientStore resolves registered applications by their credentials.
type ClientStore interface {
	// FindByCredentials returns the client for id after verifying secret.
	// Returns ErrClientNotFound when no such client exists and
	// ErrInvalidClientSecret when the secret does not match.
	FindByCredentials(ctx context.Context, id, secret string) (*Client, error)
}

// Authenticator verifies resource-owner credentials for one grant variant.
// Implementations are registered per grant type at construction time and
// never resolved dynamically during a request.
type Authenticator interface {
	// Authenticate returns the resource owner for the given credential
	// fields. The returned error's message becomes the external
	// "unauthorized" description, so it should be caller-presentable.
	Authenticate(ctx context.Context, credentials map[string]string) (ResourceOwner, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, credentials map[string]string) (ResourceOwner, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, credentials map[string]string) (ResourceOwner, error) {
	return f(ctx, credentials)
}

// TokenStore owns access-token persistence.
//
// The find/create pair is queried non-atomically by the issuer; stores that
// can be hit concurrently should enforce uniqueness over
// (owner, application, scopes, session) themselves. See pgstore and
// redisstore for two such mitigations.
type TokenStore interface {
	// FindMatching returns an active (non-expired, non-revoked) token whose
	// owner, application, scope multiset, and session all match exactly.
	// Returns ErrTokenNotFound when there is none.
	FindMatching(ctx context.Context, owner ResourceOwner, applicationID string, scopes []string, session string) (*AccessToken, error)

	// Create persists and returns a new token for the given identity,
	// shaped by policy.
	Create(ctx context.Context, owner ResourceOwner, applicationID string, scopes []string, session string, policy RefreshPolicy) (*AccessToken, error)
}

// ScopeCatalog exposes the server-wide set of permissible scope patterns,
// independent of any one client.
type ScopeCatalog interface {
	AvailablePatterns(ctx context.Context) ([]string, error)
}

// StaticCatalog is a fixed in-memory ScopeCatalog.
type StaticCatalog []string

func (c StaticCatalog) AvailablePatterns(ctx context.Context) ([]string, error) {
	return c, nil
}

// OwnerCodec serializes opaque resource owners for durable stores. The
// grant core never inspects owners, so stores that persist tokens need the
// host to say how an owner becomes a string and back.
type OwnerCodec interface {
	Encode(owner ResourceOwner) (string, error)
	Decode(key string) (ResourceOwner, error)
}

// StringOwnerCodec handles string owners, the common case when the
// authenticator returns an external subject identifier.
type StringOwnerCodec struct{}

func (StringOwnerCodec) Encode(owner ResourceOwner) (string, error) {
	s, isString := owner.(string)
	if !isString {
		return "", fmt.Errorf("grant: StringOwnerCodec cannot encode %T", owner)
	}
	return s, nil
}

func (StringOwnerCodec) Decode(key string) (ResourceOwner, error) {
	return key, nil
}
