package grant

import (
	"context"
	"errors"
	"fmt"
)

// Issuer decides between reusing an existing access token and creating a
// new one.
type Issuer struct {
	tokens TokenStore
}

// NewIssuer creates an Issuer backed by the given store.
func NewIssuer(tokens TokenStore) *Issuer {
	return &Issuer{tokens: tokens}
}

// IssueOrReuse returns an active token matching (owner, application,
// scopes, session) exactly, or asks the store to create one. A reused token
// is returned unchanged: scopes and session are never mutated, and no new
// record is written.
//
// The find/create pair is not atomic. Two concurrent identical grants can
// both miss the lookup and both create a token; preventing that requires a
// uniqueness constraint or lock keyed on the token identity inside the
// store itself.
func (i *Issuer) IssueOrReuse(ctx context.Context, owner ResourceOwner, applicationID string, requestedScopes []string, session string, policy RefreshPolicy) (*AccessToken, error) {
	existing, err := i.tokens.FindMatching(ctx, owner, applicationID, requestedScopes, session)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return nil, fmt.Errorf("find matching token: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	return i.tokens.Create(ctx, owner, applicationID, requestedScopes, session, policy)
}
