package binder

import "errors"

// Common binding errors
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrFailedToParseQuery   = errors.New("failed to parse query parameters")
	ErrMissingContentType   = errors.New("missing content type")

	// ErrBinderNotApplicable signals that a binder does not apply to this
	// request (e.g. a JSON body binder on a GET) and should be skipped.
	ErrBinderNotApplicable = errors.New("binder not applicable to this request")
)
