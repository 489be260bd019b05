package identity

import "errors"

// Auth failure classes. Handlers map these to distinct HTTP statuses so
// callers can tell "log in again" from "you lack permission" from "try again
// later". Wrap with fmt.Errorf("%w: ...") to carry diagnostics; the raw
// provider reason is for logs only and must not reach response bodies.
var (
	// ErrUnauthenticated: no credential was present on the request at all.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredential: a credential was present but did not verify
	// (bad signature, expired, revoked, skew retry exhausted, or the
	// verified claims carried no subject).
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUnavailable: a storage dependency failed during an authorization
	// decision. Fail closed; never grant on an outage.
	ErrUnavailable = errors.New("auth backend unavailable")
)
