// Package grant implements the authorization core of an OAuth2-style
// token-issuing server: a short-circuiting pipeline that authenticates a
// caller, resolves scope defaults, validates requested scopes against the
// permitted superset, and issues or reuses an access token.
//
// # Pipeline
//
// A grant attempt moves through seven ordered stages: resolve the
// authenticator for the grant type, authenticate the resource owner,
// resolve the client, default an absent scope field, validate scopes,
// issue or reuse a token, and format the terminal payload. Each stage is a
// function over an explicit Ok/Error result; the first failure makes every
// later stage a no-op, and only the final formatting step translates error
// kinds into transport status codes.
//
// # Collaborators
//
// Persistence, credential checking, and the scope catalog live behind
// interfaces (ClientStore, Authenticator, TokenStore, ScopeCatalog).
// Authenticators are registered per grant type at construction:
//
//	svc, err := grant.New(clients, tokens, grant.StaticCatalog{"admin.*", "billing"}, cfg,
//	    grant.WithAuthenticator("api_key", grant.AuthenticatorFunc(checkAPIKey)),
//	    grant.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//
//	resp := svc.Grant(ctx, grant.Request{
//	    GrantType:    "api_key",
//	    ClientID:     "web",
//	    ClientSecret: "s3cret",
//	    Credentials:  map[string]string{"key": "K", "secret": "P"},
//	    Scope:        "admin.read",
//	})
//
// The resource owner returned by an Authenticator is opaque to this
// package; it is attached to the token and handed to the store untouched.
//
// # Idempotent issuance
//
// Issuer.IssueOrReuse returns an existing active token when one matches the
// owner, application, scope multiset, and session exactly, so repeating an
// identical grant yields the same token rather than a new record. The
// find/create pair is not atomic across concurrent requests; the pgstore
// and redisstore subpackages enforce identity uniqueness at the storage
// layer, while the in-memory store leaves the race open and documents it.
//
// This package performs no I/O of its own and holds no locks across
// collaborator calls; timeout and cancellation policy belongs to the
// collaborators via the context.
package grant
