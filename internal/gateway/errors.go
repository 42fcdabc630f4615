// Package gateway talks to the field hardware: the microcontroller serving
// temperature/humidity and the camera serving sky captures.
package gateway

import "fmt"

// ErrorKind classifies why a fetch came back empty.
type ErrorKind string

const (
	// NetworkFailure covers timeouts, transport errors and non-2xx statuses.
	NetworkFailure ErrorKind = "network"
	// DecodeFailure covers malformed JSON or image payloads.
	DecodeFailure ErrorKind = "decode"
)

// FetchError is returned when an endpoint produced nothing usable.
// Callers treat it as absence and show Error() as a warning.
type FetchError struct {
	Kind     ErrorKind
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failure from %s: %v", e.Kind, e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func networkErr(endpoint string, err error) *FetchError {
	return &FetchError{Kind: NetworkFailure, Endpoint: endpoint, Err: err}
}

func decodeErr(endpoint string, err error) *FetchError {
	return &FetchError{Kind: DecodeFailure, Endpoint: endpoint, Err: err}
}
