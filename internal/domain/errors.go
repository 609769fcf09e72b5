package domain

import "errors"

var (
	// ErrProductNotFound is returned when the upstream API has no product for a code
	ErrProductNotFound = errors.New("product not found")

	// ErrNoResults is recorded when an initial page normalizes to zero items
	ErrNoResults = errors.New("no products found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUpstreamFailure is returned when the Open Food Facts request fails
	ErrUpstreamFailure = errors.New("open food facts request failed")

	// ErrMalformedResponse is returned when the upstream body is missing the expected product list
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrPreferenceNotFound is returned when a preference key has never been set
	ErrPreferenceNotFound = errors.New("preference not found")
)
