package bootstrap

import "errors"

// failureError signals that a mandatory artifact could not be obtained or
// parsed; the process must not start serving.
type failureError struct {
	artifact string
	cause    error
}

func (e failureError) Error() string {
	return "bootstrap failure: " + e.artifact + ": " + e.cause.Error()
}

func (e failureError) Unwrap() error { return e.cause }

// ErrFailure constructs a failureError for one artifact.
func ErrFailure(artifact string, cause error) error {
	return failureError{artifact: artifact, cause: cause}
}

// IsFailure reports whether err is a fatal bootstrap failure.
func IsFailure(err error) bool {
	var e failureError
	return errors.As(err, &e)
}
