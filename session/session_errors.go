package session

import "errors"

var (
	EmptyCredentialErr  = errors.New("empty credential")
	MalformedUserErr    = errors.New("malformed user record")
	InvalidRoleErr      = errors.New("invalid role")
	NotAuthenticatedErr = errors.New("not authenticated")
)
