package domain

import "errors"

// Error taxonomy for upstream failures. The platform layer classifies every
// exchange response exactly once and wraps one of these sentinels with %w, so
// callers can dispatch with errors.Is.
var (
	// ErrAuthentication covers bad or missing credentials and rejected tokens.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInsufficientFunds is raised when the account cannot cover an order.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidOrder covers malformed order requests, both those caught
	// locally before any call and those reported by the exchange.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrOrderNotFound is raised when the exchange does not know the order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrBadRequest covers malformed requests and unknown markets or assets.
	ErrBadRequest = errors.New("bad request")

	// ErrRateLimited is raised on HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotSupported is raised for features the exchange does not offer.
	ErrNotSupported = errors.New("not supported")

	// ErrExchange is the unclassified fallback. It is also used for local
	// invariant violations such as a response missing an expected field.
	ErrExchange = errors.New("exchange error")

	// ErrNotFound is returned by caches and stores for missing keys.
	ErrNotFound = errors.New("not found")
)
