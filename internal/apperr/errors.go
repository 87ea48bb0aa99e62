package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a state conflict: the delivery is not in a state the
// requested transition can act on (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrGone indicates a lost claim race: the delivery was resolved by someone
// else between the read and the conditional write. Expected, not a fault;
// callers re-fetch instead of retrying.
var ErrGone = errors.New("no longer available")

// ErrForbidden indicates the actor is outside the approved dealer set for the
// delivery it tried to act on.
var ErrForbidden = errors.New("forbidden")
