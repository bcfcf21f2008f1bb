package grant

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grantkit/grantkit/pkg/scopes"
)

// MemoryClientStore is an in-memory ClientStore for tests and development.
type MemoryClientStore struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewMemoryClientStore creates an empty in-memory client store.
func NewMemoryClientStore() *MemoryClientStore {
	return &MemoryClientStore{clients: make(map[string]Client)}
}

// Add registers a client, replacing any previous registration with the
// same id.
func (m *MemoryClientStore) Add(client Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client.Scopes = slices.Clone(client.Scopes)
	m.clients[client.ID] = client
}

// FindByCredentials implements ClientStore. Secret comparison is constant
// time.
func (m *MemoryClientStore) FindByCredentials(ctx context.Context, id, secret string) (*Client, error) {
	m.mu.RLock()
	client, found := m.clients[id]
	m.mu.RUnlock()

	if !found {
		return nil, ErrClientNotFound
	}
	if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(secret)) != 1 {
		return nil, ErrInvalidClientSecret
	}

	client.Scopes = slices.Clone(client.Scopes)
	return &client, nil
}

// MemoryTokenStore is an in-memory TokenStore for tests and development.
//
// FindMatching/Create are individually consistent but the pair is not
// atomic; it documents the same contract the durable stores carry, without
// their uniqueness mitigation.
type MemoryTokenStore struct {
	mu       sync.RWMutex
	tokens   map[uuid.UUID]*AccessToken
	ownerKey OwnerKey
}

// MemoryTokenStoreOption configures a MemoryTokenStore.
type MemoryTokenStoreOption func(*MemoryTokenStore)

// WithOwnerKey overrides how opaque owners are reduced to a comparable
// identity.
func WithOwnerKey(fn OwnerKey) MemoryTokenStoreOption {
	return func(m *MemoryTokenStore) {
		if fn != nil {
			m.ownerKey = fn
		}
	}
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore(opts ...MemoryTokenStoreOption) *MemoryTokenStore {
	m := &MemoryTokenStore{
		tokens:   make(map[uuid.UUID]*AccessToken),
		ownerKey: DefaultOwnerKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindMatching implements TokenStore. Scope comparison is multiset
// equality; expired and revoked tokens are never returned.
func (m *MemoryTokenStore) FindMatching(ctx context.Context, owner ResourceOwner, applicationID string, scopeList []string, session string) (*AccessToken, error) {
	key := m.ownerKey(owner)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tokens {
		if t.ApplicationID != applicationID || t.Session != session {
			continue
		}
		if m.ownerKey(t.Owner) != key {
			continue
		}
		if !scopes.Equal(t.Scopes, scopeList) {
			continue
		}
		if !t.Active() {
			continue
		}

		copied := *t
		copied.Scopes = slices.Clone(t.Scopes)
		return &copied, nil
	}

	return nil, ErrTokenNotFound
}

// Create implements TokenStore.
func (m *MemoryTokenStore) Create(ctx context.Context, owner ResourceOwner, applicationID string, scopeList []string, session string, policy RefreshPolicy) (*AccessToken, error) {
	token := &AccessToken{
		ID:            uuid.New(),
		Token:         randomToken(),
		Owner:         owner,
		ApplicationID: applicationID,
		Scopes:        slices.Clone(scopeList),
		Session:       session,
		CreatedAt:     time.Now(),
	}
	if policy.AccessTokenTTL > 0 {
		token.ExpiresAt = token.CreatedAt.Add(policy.AccessTokenTTL)
	}
	if policy.IssueRefreshToken {
		token.RefreshToken = randomToken()
	}

	m.mu.Lock()
	m.tokens[token.ID] = token
	m.mu.Unlock()

	copied := *token
	copied.Scopes = slices.Clone(token.Scopes)
	return &copied, nil
}

// Revoke marks a token revoked. Subsequent FindMatching calls skip it.
func (m *MemoryTokenStore) Revoke(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, found := m.tokens[id]
	if !found {
		return ErrTokenNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

// randomToken returns a URL-safe 256-bit random string.
func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
