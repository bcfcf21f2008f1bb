package grant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIssuer_ReusesMatchingToken(t *testing.T) {
	t.Parallel()

	existing := &AccessToken{
		ID:            uuid.New(),
		Token:         "tok",
		Owner:         "U1",
		ApplicationID: "C",
		Scopes:        []string{"admin.read"},
	}

	tokens := &MockTokenStore{}
	tokens.On("FindMatching", mock.Anything, "U1", "C", []string{"admin.read"}, "").
		Return(existing, nil)

	issuer := NewIssuer(tokens)
	token, err := issuer.IssueOrReuse(context.Background(), "U1", "C", []string{"admin.read"}, "", RefreshPolicy{})

	require.NoError(t, err)
	assert.Same(t, existing, token)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssuer_CreatesOnMiss(t *testing.T) {
	t.Parallel()

	created := &AccessToken{ID: uuid.New(), Token: "fresh"}
	policy := RefreshPolicy{IssueRefreshToken: true}

	tokens := &MockTokenStore{}
	tokens.On("FindMatching", mock.Anything, "U1", "C", []string{"admin.read"}, "s").
		Return(nil, ErrTokenNotFound)
	tokens.On("Create", mock.Anything, "U1", "C", []string{"admin.read"}, "s", policy).
		Return(created, nil)

	issuer := NewIssuer(tokens)
	token, err := issuer.IssueOrReuse(context.Background(), "U1", "C", []string{"admin.read"}, "s", policy)

	require.NoError(t, err)
	assert.Same(t, created, token)
	tokens.AssertExpectations(t)
}

func TestIssuer_PropagatesLookupFailure(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("disk full")

	tokens := &MockTokenStore{}
	tokens.On("FindMatching", mock.Anything, "U1", "C", []string{"admin.read"}, "").
		Return(nil, storageErr)

	issuer := NewIssuer(tokens)
	_, err := issuer.IssueOrReuse(context.Background(), "U1", "C", []string{"admin.read"}, "", RefreshPolicy{})

	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssuer_PropagatesCreateFailure(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("unique violation")

	tokens := &MockTokenStore{}
	tokens.On("FindMatching", mock.Anything, "U1", "C", []string{"a"}, "").
		Return(nil, ErrTokenNotFound)
	tokens.On("Create", mock.Anything, "U1", "C", []string{"a"}, "", RefreshPolicy{}).
		Return(nil, storageErr)

	issuer := NewIssuer(tokens)
	_, err := issuer.IssueOrReuse(context.Background(), "U1", "C", []string{"a"}, "", RefreshPolicy{})

	assert.ErrorIs(t, err, storageErr)
}
