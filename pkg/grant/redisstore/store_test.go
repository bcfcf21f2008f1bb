package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantkit/grantkit/pkg/grant"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func TestCreate_ThenFindMatching(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "U1", "C", []string{"admin.read", "billing"}, "web", grant.RefreshPolicy{AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "U1", created.Owner)

	// Scope order must not matter for the identity match.
	found, err := store.FindMatching(ctx, "U1", "C", []string{"billing", "admin.read"}, "web")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Token, found.Token)
}

func TestFindMatching_Misses(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "U1", "C", []string{"a"}, "web", grant.RefreshPolicy{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		owner   grant.ResourceOwner
		app     string
		scopes  []string
		session string
	}{
		{name: "different owner", owner: "U2", app: "C", scopes: []string{"a"}, session: "web"},
		{name: "different application", owner: "U1", app: "D", scopes: []string{"a"}, session: "web"},
		{name: "different session", owner: "U1", app: "C", scopes: []string{"a"}, session: "cli"},
		{name: "different duplicate count", owner: "U1", app: "C", scopes: []string{"a", "a"}, session: "web"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := store.FindMatching(ctx, tt.owner, tt.app, tt.scopes, tt.session)
			assert.ErrorIs(t, err, grant.ErrTokenNotFound)
		})
	}
}

func TestCreate_AdoptsExistingToken(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "U1", "C", []string{"a", "b"}, "", grant.RefreshPolicy{})
	require.NoError(t, err)

	// A second identical create loses the SET NX claim and must return the
	// winner's token, not mint another.
	second, err := store.Create(ctx, "U1", "C", []string{"b", "a"}, "", grant.RefreshPolicy{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Token, second.Token)
}

func TestCreate_TakesOverOrphanedIdentity(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	// An identity key pointing at a record that never landed, as left behind
	// by a writer that claimed the identity and then died mid-create.
	identityKey := store.identityKey("U1", "C", []string{"a"}, "web")
	require.NoError(t, mr.Set(identityKey, uuid.NewString()))

	created, err := store.Create(ctx, "U1", "C", []string{"a"}, "web", grant.RefreshPolicy{})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Token)

	// The identity now resolves to the fresh token.
	found, err := store.FindMatching(ctx, "U1", "C", []string{"a"}, "web")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCreate_TakesOverIdentityOfLapsedRecord(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	stale, err := store.Create(ctx, "U1", "C", []string{"a"}, "", grant.RefreshPolicy{AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	// Drop only the record, leaving the identity behind.
	mr.Del(store.dataKey(stale.ID.String()))

	fresh, err := store.Create(ctx, "U1", "C", []string{"a"}, "", grant.RefreshPolicy{AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	found, err := store.FindMatching(ctx, "U1", "C", []string{"a"}, "")
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, found.ID)
}

func TestFindMatching_MissesAfterExpiry(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "U1", "C", []string{"a"}, "", grant.RefreshPolicy{AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.FindMatching(ctx, "U1", "C", []string{"a"}, "")
	assert.ErrorIs(t, err, grant.ErrTokenNotFound)
}

func TestCreate_RefreshPolicy(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	created, err := store.Create(context.Background(), "U1", "C", []string{"a"}, "", grant.RefreshPolicy{IssueRefreshToken: true})
	require.NoError(t, err)
	assert.NotEmpty(t, created.RefreshToken)
	assert.True(t, created.ExpiresAt.IsZero())
}

func TestCreate_OpaqueOwnersViaCodec(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "tenant:acme/7", "C", []string{"a"}, "", grant.RefreshPolicy{})
	require.NoError(t, err)

	found, err := store.FindMatching(ctx, "tenant:acme/7", "C", []string{"a"}, "")
	require.NoError(t, err)
	assert.Equal(t, created.Owner, found.Owner)
}
