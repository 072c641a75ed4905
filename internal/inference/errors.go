package inference

import (
	"errors"
	"strconv"
)

// notFoundError signals a customer id absent from the feature table.
type notFoundError struct{ id int64 }

func (e notFoundError) Error() string { return "customer not found: " + strconv.FormatInt(e.id, 10) }

// ErrCustomerNotFound constructs a notFoundError.
func ErrCustomerNotFound(id int64) error { return notFoundError{id: id} }

// IsNotFound reports whether err indicates an unknown customer id.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// unknownFeatureError signals a feature name outside the modeled set.
type unknownFeatureError struct{ name string }

func (e unknownFeatureError) Error() string { return "unknown feature: " + e.name }

// ErrUnknownFeature constructs an unknownFeatureError.
func ErrUnknownFeature(name string) error { return unknownFeatureError{name: name} }

// IsUnknownFeature reports whether err references a feature not in the model.
func IsUnknownFeature(err error) bool {
	var e unknownFeatureError
	return errors.As(err, &e)
}

// unavailableError signals an artifact that never loaded for this
// generation; the feature stays degraded until restart.
type unavailableError struct{ what string }

func (e unavailableError) Error() string { return "unavailable: " + e.what }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(what string) error { return unavailableError{what: what} }

// IsUnavailable reports whether err indicates a degraded or unpublished artifact.
func IsUnavailable(err error) bool {
	var e unavailableError
	return errors.As(err, &e)
}
