package grant

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClientStore is a mock implementation of ClientStore.
type MockClientStore struct {
	mock.Mock
}

func (m *MockClientStore) FindByCredentials(ctx context.Context, id, secret string) (*Client, error) {
	args := m.Called(ctx, id, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStore.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) FindMatching(ctx context.Context, owner ResourceOwner, applicationID string, scopes []string, session string) (*AccessToken, error) {
	args := m.Called(ctx, owner, applicationID, scopes, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccessToken), args.Error(1)
}

func (m *MockTokenStore) Create(ctx context.Context, owner ResourceOwner, applicationID string, scopes []string, session string, policy RefreshPolicy) (*AccessToken, error) {
	args := m.Called(ctx, owner, applicationID, scopes, session, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccessToken), args.Error(1)
}

// MockScopeCatalog is a mock implementation of ScopeCatalog.
type MockScopeCatalog struct {
	mock.Mock
}

func (m *MockScopeCatalog) AvailablePatterns(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockAuthenticator is a mock implementation of Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, credentials map[string]string) (ResourceOwner, error) {
	args := m.Called(ctx, credentials)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0), nil
}
