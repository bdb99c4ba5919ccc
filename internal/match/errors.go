package match

import "errors"

var (
	// ErrInvalidEventKind rejects an unrecognized point type.
	ErrInvalidEventKind = errors.New("invalid event kind")
	// ErrUnknownEntity rejects a team or player that is not in the roster.
	ErrUnknownEntity = errors.New("unknown team or player")
	// ErrSubstitutionWindowClosed rejects a substitution outside a break.
	ErrSubstitutionWindowClosed = errors.New("substitution window closed")
	// ErrSubstitutionQuotaExceeded rejects a substitution past the per-break cap.
	ErrSubstitutionQuotaExceeded = errors.New("substitution quota exceeded")
	// ErrInvalidSubstitution rejects a pair that is not a bench-in/court-out swap.
	ErrInvalidSubstitution = errors.New("invalid substitution pair")
	// ErrConflictingAttribution rejects a line-out naming two different players.
	ErrConflictingAttribution = errors.New("conflicting player attribution")
)
