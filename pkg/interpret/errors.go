package interpret

import (
	"errors"
	"fmt"
)

// ErrInFlight is returned by Start while a previous interpretation has not resolved.
var ErrInFlight = errors.New("an interpretation is already in progress")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("interpretation request failed: %d - %s", e.StatusCode, e.Body)
}

// ResponseFormatError is a 2xx response whose body is not the expected JSON.
type ResponseFormatError struct {
	Body string
	Err  error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("malformed interpretation response: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// Message renders err as the inline text shown to the user in place of an interpretation.
func Message(err error) string {
	var (
		netErr    *NetworkError
		statusErr *StatusError
		formatErr *ResponseFormatError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInFlight):
		return "An interpretation is already being fetched."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Request failed: %d - %s", statusErr.StatusCode, statusErr.Body)
	case errors.As(err, &formatErr):
		return "Could not process the response."
	case errors.As(err, &netErr):
		return "Network error while fetching the interpretation."
	default:
		return "Could not fetch the interpretation."
	}
}
