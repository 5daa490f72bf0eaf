package remote

import "errors"

var (
	// ErrUnavailable indicates the time store is unreachable.
	ErrUnavailable = errors.New("time store unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("time store request timed out")

	// ErrRejected indicates the store rejected the mutation (validation
	// or permission failure). Retrying will not help.
	ErrRejected = errors.New("time store rejected request")
)

// IsRetryable classifies a remote call error. Connectivity problems,
// timeouts, and server errors are retryable; rejections are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRejected) {
		return false
	}
	return true
}
