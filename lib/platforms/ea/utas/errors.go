package utas

import (
	"errors"
	"fmt"
)

var ErrSessionExchange = errors.New("failed to obtain game session")
var ErrMissingStaticCatalog = errors.New("failed to fetch static player catalog")
var ErrNoSession = errors.New("no game session, exchange an access token first")

// StatusError is a response that arrived but reported failure.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, body)
}

// FetchBatchError describes a failed attempt at fetching one page of the
// club.
type FetchBatchError struct {
	Offset  int
	Attempt int
	Err     error
}

func (e *FetchBatchError) Error() string {
	return fmt.Sprintf("fetch club page at offset %d (attempt %d): %s", e.Offset, e.Attempt, e.Err.Error())
}

func (e *FetchBatchError) Unwrap() error {
	return e.Err
}

type ListingSubmitError struct {
	ItemID int64
	Err    error
}

func (e *ListingSubmitError) Error() string {
	return fmt.Sprintf("list item %d: %s", e.ItemID, e.Err.Error())
}

func (e *ListingSubmitError) Unwrap() error {
	return e.Err
}
