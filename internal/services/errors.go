// Package services defines the business logic for pets and their interactions.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Pet-related errors.
var (
	// ErrPetNotFound indicates that the requested pet does not exist.
	ErrPetNotFound = errors.New("pet not found")

	// ErrPetIDMismatch is returned when the id carried in a replace body does
	// not match the id addressed by the request path.
	ErrPetIDMismatch = errors.New("pet id mismatch")

	// ErrPetDead is returned when an interaction targets a pet that is already
	// dead. It is a distinguished outcome, not a failure: no stats change and
	// no event is recorded.
	ErrPetDead = errors.New("pet is dead")

	// ErrUpdateConflict is returned when a conditional pet write matched zero
	// rows while the pet still exists, meaning another writer got there first.
	// There is no retry; the caller surfaces the conflict.
	ErrUpdateConflict = errors.New("pet update conflict")
)
