package redisstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/grantkit/grantkit/pkg/grant"
	"github.com/grantkit/grantkit/pkg/scopes"
)

// TokenStore implements grant.TokenStore on Redis.
//
// Every token is written under two keys: an identity key derived from
// (owner, application, scope multiset, session) holding the token id, and a
// data key holding the token record. Create claims the identity key with
// SET NX, so of two concurrent identical grants exactly one token wins and
// the loser adopts it.
type TokenStore struct {
	client *redis.Client
	codec  grant.OwnerCodec
	prefix string
}

var _ grant.TokenStore = (*TokenStore)(nil)

// Option configures a TokenStore.
type Option func(*TokenStore)

// WithOwnerCodec overrides how opaque resource owners are serialized.
func WithOwnerCodec(codec grant.OwnerCodec) Option {
	return func(s *TokenStore) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// WithKeyPrefix changes the key namespace, default "grant:".
func WithKeyPrefix(prefix string) Option {
	return func(s *TokenStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a TokenStore on the given client.
func New(client *redis.Client, opts ...Option) *TokenStore {
	s := &TokenStore{
		client: client,
		codec:  grant.StringOwnerCodec{},
		prefix: "grant:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record is the stored shape of a token. The owner travels as its encoded
// key; the codec reconstructs it on read.
type record struct {
	ID            uuid.UUID `json:"id"`
	Token         string    `json:"token"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	OwnerKey      string    `json:"owner_key"`
	ApplicationID string    `json:"application_id"`
	Scopes        []string  `json:"scopes"`
	Session       string    `json:"session,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// FindMatching implements grant.TokenStore.
func (s *TokenStore) FindMatching(ctx context.Context, owner grant.ResourceOwner, applicationID string, scopeList []string, session string) (*grant.AccessToken, error) {
	ownerKey, err := s.codec.Encode(owner)
	if err != nil {
		return nil, fmt.Errorf("encode owner: %w", err)
	}

	id, err := s.client.Get(ctx, s.identityKey(ownerKey, applicationID, scopeList, session)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, grant.ErrTokenNotFound
		}
		return nil, fmt.Errorf("get identity key: %w", err)
	}

	return s.load(ctx, id)
}

// Create implements grant.TokenStore. SET NX on the identity key decides
// the winner between concurrent identical grants.
func (s *TokenStore) Create(ctx context.Context, owner grant.ResourceOwner, applicationID string, scopeList []string, session string, policy grant.RefreshPolicy) (*grant.AccessToken, error) {
	ownerKey, err := s.codec.Encode(owner)
	if err != nil {
		return nil, fmt.Errorf("encode owner: %w", err)
	}

	rec := record{
		ID:            uuid.New(),
		Token:         randomToken(),
		OwnerKey:      ownerKey,
		ApplicationID: applicationID,
		Scopes:        slices.Clone(scopeList),
		Session:       session,
		CreatedAt:     time.Now(),
	}
	if policy.IssueRefreshToken {
		rec.RefreshToken = randomToken()
	}

	var ttl time.Duration
	if policy.AccessTokenTTL > 0 {
		rec.ExpiresAt = rec.CreatedAt.Add(policy.AccessTokenTTL)
		ttl = policy.AccessTokenTTL
	}

	identityKey := s.identityKey(ownerKey, applicationID, scopeList, session)

	// The identity key carries the token TTL and is written before the data
	// key, so it can lapse a moment before its record. That skew only costs
	// an extra create; the opposite skew is handled in load.
	claimed, err := s.client.SetNX(ctx, identityKey, rec.ID.String(), ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("claim identity key: %w", err)
	}
	if !claimed {
		winner, err := s.client.Get(ctx, identityKey).Result()
		switch {
		case err == nil:
			token, loadErr := s.load(ctx, winner)
			if loadErr == nil {
				// Another writer holds the identity; return their token.
				return token, nil
			}
			if !errors.Is(loadErr, grant.ErrTokenNotFound) {
				return nil, loadErr
			}
			// The identity points at a record that never landed or already
			// lapsed. Take the identity over rather than failing every
			// grant until it expires.
		case errors.Is(err, redis.Nil):
			// Identity expired between SetNX and Get; take it over.
		default:
			return nil, fmt.Errorf("get identity key: %w", err)
		}
		if err := s.client.Set(ctx, identityKey, rec.ID.String(), ttl).Err(); err != nil {
			return nil, fmt.Errorf("claim identity key: %w", err)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.releaseIdentity(ctx, identityKey)
		return nil, fmt.Errorf("marshal token: %w", err)
	}
	if err := s.client.Set(ctx, s.dataKey(rec.ID.String()), data, ttl).Err(); err != nil {
		s.releaseIdentity(ctx, identityKey)
		return nil, fmt.Errorf("store token: %w", err)
	}

	return s.toToken(rec)
}

// releaseIdentity drops a claimed identity key whose record was never
// persisted, so later grants are not pinned to a missing token. Cleanup runs
// even when the caller's context is already cancelled.
func (s *TokenStore) releaseIdentity(ctx context.Context, identityKey string) {
	s.client.Del(context.WithoutCancel(ctx), identityKey)
}

func (s *TokenStore) load(ctx context.Context, id string) (*grant.AccessToken, error) {
	data, err := s.client.Get(ctx, s.dataKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Identity key outlived the token record; treat as a miss.
			return nil, grant.ErrTokenNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}

	token, err := s.toToken(rec)
	if err != nil {
		return nil, err
	}
	if !token.Active() {
		return nil, grant.ErrTokenNotFound
	}
	return token, nil
}

func (s *TokenStore) toToken(rec record) (*grant.AccessToken, error) {
	owner, err := s.codec.Decode(rec.OwnerKey)
	if err != nil {
		return nil, fmt.Errorf("decode owner: %w", err)
	}

	return &grant.AccessToken{
		ID:            rec.ID,
		Token:         rec.Token,
		RefreshToken:  rec.RefreshToken,
		Owner:         owner,
		ApplicationID: rec.ApplicationID,
		Scopes:        rec.Scopes,
		Session:       rec.Session,
		CreatedAt:     rec.CreatedAt,
		ExpiresAt:     rec.ExpiresAt,
	}, nil
}

// identityKey hashes the token identity so arbitrary owner keys and scope
// lists stay within Redis key conventions.
func (s *TokenStore) identityKey(ownerKey, applicationID string, scopeList []string, session string) string {
	sorted := slices.Clone(scopeList)
	sort.Strings(sorted)

	h := sha256.New()
	for _, part := range []string{ownerKey, applicationID, strings.Join(sorted, scopes.Separator), session} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return s.prefix + "identity:" + hex.EncodeToString(h.Sum(nil))
}

func (s *TokenStore) dataKey(id string) string {
	return s.prefix + "token:" + id
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
