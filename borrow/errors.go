package borrow

import "errors"

var (
	// ErrNotFound: unknown request, book or user id.
	ErrNotFound = errors.New("borrow: not found")
	// ErrInvalidTransition: the requested edge is not in the status graph.
	ErrInvalidTransition = errors.New("borrow: invalid status transition")
	// ErrNotAvailable: no copies left, or the account is not approved.
	ErrNotAvailable = errors.New("borrow: book not available")
	// ErrAlreadyOpen: an unresolved request already exists for the pair.
	ErrAlreadyOpen = errors.New("borrow: request already open")
	// ErrNotEligible: renewal/cancellation/return window violation.
	ErrNotEligible = errors.New("borrow: not eligible")
)
