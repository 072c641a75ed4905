package hub

import "errors"

// notFoundError signals that the remote path does not exist in the repo.
type notFoundError struct{ repo, path string }

func (e notFoundError) Error() string { return "artifact not found: " + e.repo + "/" + e.path }

// ErrNotFound constructs a notFoundError.
func ErrNotFound(repo, path string) error { return notFoundError{repo: repo, path: path} }

// IsNotFound reports whether err indicates a missing remote path.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// unauthorizedError signals a missing or rejected credential.
type unauthorizedError struct{ repo string }

func (e unauthorizedError) Error() string { return "unauthorized for repo: " + e.repo }

// ErrUnauthorized constructs an unauthorizedError.
func ErrUnauthorized(repo string) error { return unauthorizedError{repo: repo} }

// IsUnauthorized reports whether err indicates a credential failure.
func IsUnauthorized(err error) bool {
	var e unauthorizedError
	return errors.As(err, &e)
}

// unavailableError signals a transient network/transport failure. The
// bootstrap manager retries these; nothing else is retried.
type unavailableError struct {
	msg   string
	cause error
}

func (e unavailableError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e unavailableError) Unwrap() error { return e.cause }

// ErrUnavailable constructs an unavailableError wrapping cause.
func ErrUnavailable(msg string, cause error) error { return unavailableError{msg: msg, cause: cause} }

// IsUnavailable reports whether err indicates a transient transport failure.
func IsUnavailable(err error) bool {
	var e unavailableError
	return errors.As(err, &e)
}
