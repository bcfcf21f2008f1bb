package pgstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/grantkit/grantkit/pkg/grant"
	"github.com/grantkit/grantkit/pkg/pg"
	"github.com/grantkit/grantkit/pkg/scopes"
)

// Store implements grant.ClientStore and grant.TokenStore on PostgreSQL.
//
// Client secrets are persisted as bcrypt hashes. Token identity uniqueness
// is enforced by a partial unique index over (application_id, owner_key,
// scopes_key, session) for non-revoked rows, closing the issuer's
// find-then-create race at the storage layer.
type Store struct {
	pool  *pgxpool.Pool
	codec grant.OwnerCodec
}

var (
	_ grant.ClientStore = (*Store)(nil)
	_ grant.TokenStore  = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithOwnerCodec overrides how opaque resource owners are serialized.
func WithOwnerCodec(codec grant.OwnerCodec) Option {
	return func(s *Store) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// New creates a Store on the given pool. Owners are assumed to be strings
// unless WithOwnerCodec says otherwise.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:  pool,
		codec: grant.StringOwnerCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClient registers a client, storing its secret as a bcrypt hash.
func (s *Store) CreateClient(ctx context.Context, client grant.Client) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(client.Secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash client secret: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO oauth_clients (id, secret_hash, scopes) VALUES ($1, $2, $3)`,
		client.ID, string(hash), scopes.Join(client.Scopes),
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// FindByCredentials implements grant.ClientStore.
func (s *Store) FindByCredentials(ctx context.Context, id, secret string) (*grant.Client, error) {
	var (
		secretHash string
		scopeList  string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT secret_hash, scopes FROM oauth_clients WHERE id = $1`,
		id,
	).Scan(&secretHash, &scopeList)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, grant.ErrClientNotFound
		}
		return nil, fmt.Errorf("select client: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)) != nil {
		return nil, grant.ErrInvalidClientSecret
	}

	return &grant.Client{
		ID:     id,
		Scopes: scopes.Parse(scopeList),
	}, nil
}

// FindMatching implements grant.TokenStore. Scope matching uses the sorted
// canonical form so multiset equality survives column storage.
func (s *Store) FindMatching(ctx context.Context, owner grant.ResourceOwner, applicationID string, scopeList []string, session string) (*grant.AccessToken, error) {
	ownerKey, err := s.codec.Encode(owner)
	if err != nil {
		return nil, fmt.Errorf("encode owner: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`SELECT id, token, refresh_token, scopes, created_at, expires_at
		   FROM oauth_access_tokens
		  WHERE application_id = $1 AND owner_key = $2 AND scopes_key = $3 AND session = $4
		    AND revoked_at IS NULL
		    AND (expires_at IS NULL OR expires_at > now())
		  ORDER BY created_at DESC
		  LIMIT 1`,
		applicationID, ownerKey, scopeFingerprint(scopeList), session,
	)

	var (
		token        grant.AccessToken
		refreshToken *string
		storedScopes string
		expiresAt    *time.Time
	)
	if err := row.Scan(&token.ID, &token.Token, &refreshToken, &storedScopes, &token.CreatedAt, &expiresAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, grant.ErrTokenNotFound
		}
		return nil, fmt.Errorf("select token: %w", err)
	}

	if refreshToken != nil {
		token.RefreshToken = *refreshToken
	}
	if expiresAt != nil {
		token.ExpiresAt = *expiresAt
	}
	token.ApplicationID = applicationID
	token.Scopes = scopes.Parse(storedScopes)
	token.Session = session

	if token.Owner, err = s.codec.Decode(ownerKey); err != nil {
		return nil, fmt.Errorf("decode owner: %w", err)
	}

	return &token, nil
}

// Create implements grant.TokenStore. When the identity index rejects the
// insert, another writer won the race: their token is returned instead. An
// expired-but-unrevoked blocker is retired first, then the insert retried
// once.
func (s *Store) Create(ctx context.Context, owner grant.ResourceOwner, applicationID string, scopeList []string, session string, policy grant.RefreshPolicy) (*grant.AccessToken, error) {
	ownerKey, err := s.codec.Encode(owner)
	if err != nil {
		return nil, fmt.Errorf("encode owner: %w", err)
	}

	token, err := s.insertToken(ctx, owner, ownerKey, applicationID, scopeList, session, policy)
	if !pg.IsDuplicateKeyError(err) {
		return token, err
	}

	// Lost the race to a concurrent identical grant, or an expired token
	// still occupies the identity slot.
	if existing, findErr := s.FindMatching(ctx, owner, applicationID, scopeList, session); findErr == nil {
		return existing, nil
	} else if !errors.Is(findErr, grant.ErrTokenNotFound) {
		return nil, findErr
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE oauth_access_tokens SET revoked_at = now()
		  WHERE application_id = $1 AND owner_key = $2 AND scopes_key = $3 AND session = $4
		    AND revoked_at IS NULL`,
		applicationID, ownerKey, scopeFingerprint(scopeList), session,
	); err != nil {
		return nil, fmt.Errorf("retire expired token: %w", err)
	}

	return s.insertToken(ctx, owner, ownerKey, applicationID, scopeList, session, policy)
}

func (s *Store) insertToken(ctx context.Context, owner grant.ResourceOwner, ownerKey, applicationID string, scopeList []string, session string, policy grant.RefreshPolicy) (*grant.AccessToken, error) {
	token := &grant.AccessToken{
		ID:            uuid.New(),
		Token:         randomToken(),
		Owner:         owner,
		ApplicationID: applicationID,
		Scopes:        slices.Clone(scopeList),
		Session:       session,
		CreatedAt:     time.Now(),
	}

	var (
		refreshToken *string
		expiresAt    *time.Time
	)
	if policy.IssueRefreshToken {
		token.RefreshToken = randomToken()
		refreshToken = &token.RefreshToken
	}
	if policy.AccessTokenTTL > 0 {
		token.ExpiresAt = token.CreatedAt.Add(policy.AccessTokenTTL)
		expiresAt = &token.ExpiresAt
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO oauth_access_tokens
		   (id, token, refresh_token, application_id, owner_key, scopes, scopes_key, session, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		token.ID, token.Token, refreshToken, applicationID, ownerKey,
		scopes.Join(token.Scopes), scopeFingerprint(token.Scopes), session,
		token.CreatedAt, expiresAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("insert token: %w", err)
	}

	return token, nil
}

// scopeFingerprint is the order-insensitive identity of a scope multiset.
func scopeFingerprint(scopeList []string) string {
	sorted := slices.Clone(scopeList)
	sort.Strings(sorted)
	return strings.Join(sorted, scopes.Separator)
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
