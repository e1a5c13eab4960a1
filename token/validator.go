package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	MalformedCredentialErr = errors.New("malformed credential")
	NoExpiryClaimErr       = errors.New("credential has no expiry claim")
)

var parser = jwtlib.NewParser()

// IsValid reports whether the credential decodes and carries an expiry claim
// in the future. Credentials are issued and signed by the platform; this
// check is an offline expiry gate, not a signature verification, so the
// payload is decoded without verifying. Any decode failure means invalid:
// this function never panics and never returns an error to the caller.
func IsValid(credential string) bool {
	expiry, err := ExpiresAt(credential)
	if err != nil {
		return false
	}
	return expiry.After(NowTimeFunc())
}

// ExpiresAt extracts the expiry claim from a credential without verifying
// its signature.
func ExpiresAt(credential string) (time.Time, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return time.Time{}, errors.Wrap(MalformedCredentialErr, err.Error())
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(MalformedCredentialErr, err.Error())
	}
	if expiry == nil {
		return time.Time{}, NoExpiryClaimErr
	}
	return expiry.Time, nil
}
