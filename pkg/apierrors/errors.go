// Package apierrors defines the validation errors shared by all packages of
// the First Street client. They are raised before any network call is made.
package apierrors

import "errors"

var (
	// ErrInvalidArgument is returned for a missing or empty required argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidType is returned when an argument has the wrong dynamic type.
	ErrInvalidType = errors.New("invalid argument type")
)
