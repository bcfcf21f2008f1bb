package grant

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/grantkit/grantkit/pkg/logger"
)

// Service runs the grant pipeline. It is immutable after construction and
// safe for concurrent use; each Grant call owns its entire state.
type Service struct {
	clients        ClientStore
	tokens         TokenStore
	catalog        ScopeCatalog
	cfg            Config
	issuer         *Issuer
	authenticators map[string]Authenticator
	log            *slog.Logger
}

// Option configures a Service during construction.
type Option func(*Service) error

// WithAuthenticator registers the resource-owner authenticator for a grant
// type. Registration happens here, at configuration time; requests only
// ever look the handler up.
func WithAuthenticator(grantType string, a Authenticator) Option {
	return func(s *Service) error {
		if grantType == "" {
			return ErrEmptyGrantType
		}
		if a == nil {
			return ErrNilAuthenticator
		}
		if _, exists := s.authenticators[grantType]; exists {
			return ErrDuplicateGrantType
		}
		s.authenticators[grantType] = a
		return nil
	}
}

// WithLogger configures the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		if l != nil {
			s.log = l
		}
		return nil
	}
}

// New constructs a grant Service. At least one authenticator must be
// registered; an empty registry would make every request fail with
// unsupported_grant_type, which is always a wiring mistake.
func New(clients ClientStore, tokens TokenStore, catalog ScopeCatalog, cfg Config, opts ...Option) (*Service, error) {
	if clients == nil {
		return nil, ErrNilClientStore
	}
	if tokens == nil {
		return nil, ErrNilTokenStore
	}
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	s := &Service{
		clients:        clients,
		tokens:         tokens,
		catalog:        catalog,
		cfg:            cfg,
		issuer:         NewIssuer(tokens),
		authenticators: make(map[string]Authenticator),
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if len(s.authenticators) == 0 {
		return nil, ErrNoAuthenticators
	}

	return s, nil
}

// Grant runs one request through the pipeline: resolve authenticator,
// authenticate owner, resolve client, default scopes, validate scopes,
// issue or reuse, format. Stages execute strictly in order and short-circuit
// on the first failure.
func (s *Service) Grant(ctx context.Context, req Request) Response {
	start := time.Now()
	r := &run{
		ctx:   ctx,
		svc:   s,
		state: &Context{Request: req},
	}

	res := ok(r.state).
		then(r.resolveAuthenticator).
		then(r.authenticateOwner).
		then(r.resolveClient).
		then(r.applyScopeDefaults).
		then(r.validateScopes).
		then(r.issueToken)

	resp := respond(res)
	s.logOutcome(ctx, req, resp, time.Since(start))
	return resp
}

func (s *Service) logOutcome(ctx context.Context, req Request, resp Response, elapsed time.Duration) {
	if resp.OK() {
		s.log.DebugContext(ctx, "access token granted",
			logger.Component("grant"),
			logger.GrantType(req.GrantType),
			logger.ClientID(req.ClientID),
			logger.TokenID(resp.Token.ID.String()),
			logger.Duration(elapsed),
		)
		return
	}

	s.log.InfoContext(ctx, "grant rejected",
		logger.Component("grant"),
		logger.GrantType(req.GrantType),
		logger.ClientID(req.ClientID),
		slog.String("error_kind", string(resp.ErrorKind)),
		slog.String("description", resp.Description),
		logger.Duration(elapsed),
	)
}
