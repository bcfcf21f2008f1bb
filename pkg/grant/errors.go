package grant

import "errors"

// Kind is a stable OAuth-style error code carried across the external
// boundary. Values follow RFC 6749 naming where one exists.
type Kind string

const (
	KindUnsupportedGrantType Kind = "unsupported_grant_type"
	KindUnauthorized         Kind = "unauthorized"
	KindInvalidRequest       Kind = "invalid_request"
	KindInvalidClient        Kind = "invalid_client"
	KindInvalidScopes        Kind = "invalid_scopes"
	KindServerError          Kind = "server_error"
)

// Error is the failure value a pipeline stage produces. Once a run carries
// an Error, every later stage passes it through untouched; formatting into
// the external payload happens in exactly one place.
type Error struct {
	Kind        Kind
	Description string
	cause       error
}

func (e *Error) Error() string {
	if e.Description != "" {
		return string(e.Kind) + ": " + e.Description
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// failure builds a pipeline Error wrapping an underlying collaborator error.
func failure(kind Kind, description string, cause error) *Error {
	return &Error{Kind: kind, Description: description, cause: cause}
}

// Collaborator sentinels. Stores return these so the pipeline can map them
// to error kinds without string matching.
var (
	// ErrClientNotFound is returned by a ClientStore when no client exists
	// for the given id.
	ErrClientNotFound = errors.New("grant: client not found")

	// ErrInvalidClientSecret is returned by a ClientStore when the client
	// exists but the secret does not match.
	ErrInvalidClientSecret = errors.New("grant: invalid client secret")

	// ErrTokenNotFound is returned by a TokenStore when no matching active
	// token exists.
	ErrTokenNotFound = errors.New("grant: token not found")
)

// Construction errors.
var (
	ErrNilClientStore     = errors.New("grant: client store is required")
	ErrNilTokenStore      = errors.New("grant: token store is required")
	ErrNilCatalog         = errors.New("grant: scope catalog is required")
	ErrNilAuthenticator   = errors.New("grant: authenticator must not be nil")
	ErrEmptyGrantType     = errors.New("grant: grant type must not be empty")
	ErrDuplicateGrantType = errors.New("grant: grant type already registered")
	ErrNoAuthenticators   = errors.New("grant: at least one authenticator is required")
)
