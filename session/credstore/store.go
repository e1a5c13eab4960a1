// Package credstore persists the client-side credential snapshot: the
// bearer token, the cached user record, the remember-me window and the
// daily credit deduction marker. The store is a cache of remote state,
// never the source of truth.
package credstore

import (
	"time"

	"github.com/pkg/errors"

	"github.com/planforge/go-session-client/users"
)

var (
	NoCredentialsErr = errors.New("no credentials stored")
	NoRememberErr    = errors.New("no remember-me window stored")
	NoMarkerErr      = errors.New("no deduction marker stored")
)

// Store is the persisted credential record. The token and the user record
// form one unit: SaveCredentials writes both in a single record write so a
// concurrent reader can never observe a token without its user or the
// other way round.
type Store interface {
	// SaveCredentials replaces the token and the cached user together.
	SaveCredentials(token string, user *users.User) error
	// Credentials returns the stored token/user pair, or NoCredentialsErr.
	Credentials() (string, *users.User, error)
	// DeleteCredentials removes the token and the cached user, leaving the
	// remaining keys untouched.
	DeleteCredentials() error

	// SaveRemember records a "stay signed in" window ending at expiry.
	SaveRemember(expiry time.Time) error
	// Remember returns the remember-me expiry, or NoRememberErr.
	Remember() (time.Time, error)

	// SaveDeductionMarker records the UTC calendar day (2006-01-02) on
	// which the daily credit deduction last ran.
	SaveDeductionMarker(day string) error
	// DeductionMarker returns the stored day, or NoMarkerErr.
	DeductionMarker() (string, error)

	// Wipe deletes the entire record, markers included.
	Wipe() error
}

// record is the serialized shape of the store. Key names are shared with
// the other platform clients and must not change.
type record struct {
	Token              string      `json:"token,omitempty"`
	User               *users.User `json:"user,omitempty"`
	RememberMe         bool        `json:"rememberMe,omitempty"`
	SessionExpiry      *time.Time  `json:"sessionExpiry,omitempty"`
	LastDailyDeduction string      `json:"lastDailyCreditDeduction,omitempty"`
}
