package playstore

import "errors"

var (
	// ErrNotFound indicates the storefront has no listing for the requested app.
	ErrNotFound = errors.New("playstore: app not found")

	// ErrUnavailable indicates the storefront could not be reached, timed out,
	// or answered with a non-recoverable HTTP status.
	ErrUnavailable = errors.New("playstore: storefront unavailable")

	// ErrParse indicates a page was retrieved but could not be recognised as
	// an app listing at all.
	ErrParse = errors.New("playstore: unrecognisable listing page")
)
