// Package session owns the client-side authentication session: restoring a
// cached credential at process start, the login/logout transitions, the
// role commitment, and the hand-off to the daily credit deduction. All
// other parts of the client read the session through the projections on
// Manager; nothing else mutates it.
package session

import "github.com/planforge/go-session-client/users"

// State is the session lifecycle state. Exactly one holds at any time;
// "has a token but no user" and similar half-states are unrepresentable.
type State int

const (
	// StateUninitialized is the state before Initialize has started.
	StateUninitialized State = iota
	// StateRestoring means Initialize is reconciling the cached credential
	// with the remote identity.
	StateRestoring
	// StateAuthenticated means a valid credential and user are present.
	StateAuthenticated
	// StateUnauthenticated means initialization finished with no session.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Session is a point-in-time snapshot of the managed session. User is a
// copy; mutating it does not affect the Manager.
type Session struct {
	State State
	Token string
	User  *users.User
}

// Authenticated reports whether the snapshot carries a live session.
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated && s.Token != "" && s.User != nil
}

// Initialized reports whether initialization has completed, whatever the
// outcome. The rest of the client must never wait on an uninitialized
// session forever.
func (s Session) Initialized() bool {
	return s.State == StateAuthenticated || s.State == StateUnauthenticated
}
