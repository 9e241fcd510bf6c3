package listview

import (
	"errors"
	"fmt"
)

var (
	// ErrPageOutOfRange is returned for page numbers outside [1, totalPages].
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrUnknownColumn is returned when sorting by a missing or unsortable column.
	ErrUnknownColumn = errors.New("unknown or unsortable column")

	// ErrSuperseded is returned by a load whose result was discarded because a
	// newer load was issued while it was in flight.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrDeleteUnsupported is returned by DeleteRow on a view without a Deleter.
	ErrDeleteUnsupported = errors.New("view does not support delete")
)

// FetchError records a failed list fetch. The view keeps its previous rows.
type FetchError struct {
	Screen string
	Page   int
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Screen, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
