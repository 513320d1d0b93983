package gmail

import "errors"

var (
	// ErrAuthExpired indicates the bearer token was rejected. The caller
	// should refresh credentials or restart the login flow.
	ErrAuthExpired = errors.New("gmail authorization expired")

	// ErrTransport indicates a network or provider failure that is not an
	// authorization problem.
	ErrTransport = errors.New("gmail transport failure")
)
