// Package sentinel holds infrastructure facts returned by stores.
//
// Stores return these (optionally wrapped); services translate them into
// coded domain errors. Validation failures never use sentinels.
package sentinel

import "errors"

var (
	// ErrNotFound: no row with the requested key is visible.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed: a unique key (clinic slug, profile id) is taken.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInvalidState: the stored row changed shape under a conditional write.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the backing service could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
