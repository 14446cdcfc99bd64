package core

import "errors"

// Error codes carried on websocket error frames and API responses.
const (
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeStoreFailure = "store_failure"
	ErrCodeRateLimited  = "rate_limited"
)

var (
	// ErrUnauthenticated is returned when no sender identity is established.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMissingReceiver is returned when a send names no receiver.
	ErrMissingReceiver = errors.New("receiver is required")
	// ErrEmptyBody is returned when the message body trims to empty.
	ErrEmptyBody = errors.New("message body is empty")
	// ErrSelfMessage is returned when sender and receiver are the same identity.
	ErrSelfMessage = errors.New("cannot message yourself")
	// ErrPersistence is returned when the durable store fails or times out.
	ErrPersistence = errors.New("message store unavailable")
)

// IsValidation reports whether err is one of the client-correctable
// validation failures.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingReceiver) ||
		errors.Is(err, ErrEmptyBody) ||
		errors.Is(err, ErrSelfMessage)
}

// CoreError wraps a code and human-readable message for the wire.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}
