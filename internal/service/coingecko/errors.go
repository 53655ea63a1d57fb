package coingecko

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means the network call itself could not be completed
	// (DNS, connection refused, timeout).
	ErrUnreachable = errors.New("coingecko: upstream unreachable")

	// ErrMalformedResponse means the body did not match the expected
	// market_chart JSON shape.
	ErrMalformedResponse = errors.New("coingecko: malformed response")
)

// HTTPError is a non-2xx upstream response, carrying the status code.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("coingecko: upstream status %d", e.Status)
}

// ErrorKind classifies err for metrics labels.
func ErrorKind(err error) string {
	var he *HTTPError
	switch {
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.As(err, &he):
		return "http_error"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}
