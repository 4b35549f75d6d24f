package library

import "errors"

var (
	// ErrInvalidArgument is returned when a value outside a closed set is supplied,
	// e.g. constructing a Book with an unknown genre.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBookNotAvailable is returned when borrowing a book that is already out.
	ErrBookNotAvailable = errors.New("book not available")

	// ErrLateReturn is returned by a late return. The book has been made
	// available by the time the caller sees it.
	ErrLateReturn = errors.New("late return")

	// ErrInvalidMembership is returned when a fee is requested for an unknown tier.
	ErrInvalidMembership = errors.New("invalid membership")

	// ErrNotFound is returned by the store for unknown IDs.
	ErrNotFound = errors.New("not found")
)
