// Package identity consumes the platform's remote identity API: the
// authoritative user record and the one-time role commitment.
package identity

import (
	"context"

	"github.com/pkg/errors"

	"github.com/planforge/go-session-client/users"
)

var (
	UserFetchFailedErr    = errors.New("identity fetch failed")
	RoleSelectionFailsErr = errors.New("role selection rejected")
)

// Client is the contract the session layer holds against the identity API.
type Client interface {
	// Me returns the authoritative user record for the credential.
	Me(ctx context.Context, credential string) (*users.User, error)
	// SelectRole commits the account to a role. The remote side is the
	// source of truth; callers must not apply the role locally until this
	// returns nil.
	SelectRole(ctx context.Context, credential string, role users.RoleType) error
}
