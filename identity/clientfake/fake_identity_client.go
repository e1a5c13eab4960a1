// Package clientfake provides an in-memory identity.Client for tests.
package clientfake

import (
	"context"
	"sync"

	"github.com/planforge/go-session-client/identity"
	"github.com/planforge/go-session-client/users"
)

// FakeIdentityClient records calls and serves canned responses.
type FakeIdentityClient struct {
	mu sync.Mutex

	User          *users.User // Returned by Me when MeErr is nil
	MeErr         error
	SelectRoleErr error

	// Gate, when non-nil, blocks Me until the channel is closed. Used to
	// simulate an in-flight reconciliation fetch.
	Gate chan struct{}

	MeCalls         int
	SelectRoleCalls []users.RoleType
}

var _ identity.Client = (*FakeIdentityClient)(nil)

func NewFakeIdentityClient() *FakeIdentityClient {
	return &FakeIdentityClient{}
}

func (f *FakeIdentityClient) Me(ctx context.Context, credential string) (*users.User, error) {
	f.mu.Lock()
	f.MeCalls++
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	if f.User == nil {
		return nil, identity.UserFetchFailedErr
	}
	u := *f.User
	return &u, nil
}

func (f *FakeIdentityClient) SelectRole(ctx context.Context, credential string, role users.RoleType) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SelectRoleCalls = append(f.SelectRoleCalls, role)
	return f.SelectRoleErr
}

// MeCallCount returns how many Me calls have been made.
func (f *FakeIdentityClient) MeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MeCalls
}

// SetUser replaces the canned Me response.
func (f *FakeIdentityClient) SetUser(u *users.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.User = u
}

// SetMeErr makes Me fail with err.
func (f *FakeIdentityClient) SetMeErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MeErr = err
}
