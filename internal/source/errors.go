package source

import "errors"

var (
	// ErrSourceUnavailable reports that the locator could not be fetched.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDecodeFailed reports that content was retrieved but could not be
	// decoded as the declared kind.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrNotReady reports an operation on a parser before a successful load.
	ErrNotReady = errors.New("parser not ready")

	// ErrAlreadyLoaded reports a second Load call on the same parser.
	ErrAlreadyLoaded = errors.New("load already attempted")
)
