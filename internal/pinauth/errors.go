package pinauth

import "errors"

// Domain errors for the pinauth package.
var (
	// ErrInvalidPIN is returned when a configured PIN is not exactly
	// PINLength decimal digits.
	ErrInvalidPIN = errors.New("pinauth: PIN must be 4 decimal digits")

	// ErrStoreUnavailable is returned when the non-volatile reference word
	// cannot be read or written.
	ErrStoreUnavailable = errors.New("pinauth: reference store unavailable")

	// ErrStoreUninitialised is returned by Verify when no reference word has
	// been persisted yet.
	ErrStoreUninitialised = errors.New("pinauth: reference hash not initialised")

	// ErrMissingCollaborator is returned by NewController when a required
	// interface is nil.
	ErrMissingCollaborator = errors.New("pinauth: missing collaborator")

	// ErrUnknownPolicy is returned when a policy name cannot be parsed.
	ErrUnknownPolicy = errors.New("pinauth: unknown policy")
)
