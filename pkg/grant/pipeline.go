package grant

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/grantkit/grantkit/pkg/scopes"
)

// result threads one grant attempt through the stages. While ok it carries
// the accumulating state; once it holds an Error, every later stage is a
// no-op and the error flows to the formatting step unchanged.
type result struct {
	state *Context
	err   *Error
}

func ok(state *Context) result {
	return result{state: state}
}

// then applies stage unless the run has already failed.
func (r result) then(stage func() *Error) result {
	if r.err != nil {
		return r
	}
	if err := stage(); err != nil {
		r.err = err
	}
	return r
}

// run binds one request to the service collaborators for a single pipeline
// pass. It holds no shared mutable state; distinct runs are independent.
type run struct {
	ctx   context.Context
	svc   *Service
	state *Context
}

// resolveAuthenticator looks up the authenticator registered for the
// requested grant type.
func (r *run) resolveAuthenticator() *Error {
	a, found := r.svc.authenticators[r.state.Request.GrantType]
	if !found {
		return failure(KindUnsupportedGrantType, "grant type is not supported", nil)
	}
	r.state.authenticator = a
	return nil
}

// authenticateOwner invokes the variant's callback with the request's
// credential fields. The callback's failure reason travels verbatim as the
// external error description.
func (r *run) authenticateOwner() *Error {
	owner, err := r.state.authenticator.Authenticate(r.ctx, r.state.Request.Credentials)
	if err != nil {
		return failure(KindUnauthorized, err.Error(), err)
	}
	r.state.Owner = owner
	return nil
}

// resolveClient loads the calling application. Store sentinels map to
// invalid_client; any other lookup fault surfaces as a server error rather
// than masquerading as an authentication failure.
func (r *run) resolveClient() *Error {
	client, err := r.svc.clients.FindByCredentials(r.ctx, r.state.Request.ClientID, r.state.Request.ClientSecret)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrInvalidClientSecret) {
			return failure(KindInvalidClient, "client authentication failed", err)
		}
		return failure(KindServerError, "client lookup failed", err)
	}
	r.state.Client = client
	return nil
}

// applyScopeDefaults fills an absent scope field with the client's
// registered scopes. Runs strictly before validation, which reads the
// defaulted value.
func (r *run) applyScopeDefaults() *Error {
	if strings.TrimSpace(r.state.Request.Scope) == "" {
		r.state.Request.Scope = scopes.Join(r.state.Client.Scopes)
	}
	return nil
}

// validateScopes checks the requested scopes against the permitted superset:
// the server-wide catalog plus the client's registered scopes, the latter
// falling back to the server defaults when the client has none.
func (r *run) validateScopes() *Error {
	requested := scopes.Parse(r.state.Request.Scope)

	catalog, err := r.svc.catalog.AvailablePatterns(r.ctx)
	if err != nil {
		return failure(KindServerError, "scope catalog unavailable", err)
	}

	permitted := append(slices.Clone(catalog), scopes.DefaultTo(r.state.Client.Scopes, r.svc.cfg.serverScopes())...)
	if !scopes.HasAll(permitted, requested) {
		return failure(KindInvalidScopes, "requested scope is not allowed", nil)
	}

	r.state.Scopes = requested
	return nil
}

// issueToken delegates to the issuer. Storage failures pass through without
// being swallowed or retried.
func (r *run) issueToken() *Error {
	token, err := r.svc.issuer.IssueOrReuse(r.ctx, r.state.Owner, r.state.Client.ID, r.state.Scopes, r.state.Request.Session, r.svc.cfg.refreshPolicy())
	if err != nil {
		return failure(KindServerError, "token issuance failed", err)
	}
	r.state.Token = token
	return nil
}
