// Package service contains the business rules of the WG backend. Each
// resource family gets a service interface with request/response DTOs;
// authorization predicates are consulted before every mutation and
// failures never leave partial writes behind.
package service

import "errors"

// Error taxonomy. Handlers map these onto HTTP status codes with
// errors.Is; services wrap them with context via fmt.Errorf("%w: ...").
var (
	// ErrValidation marks missing or malformed input, rejected before
	// any store access.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks an entity id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a failed authorization predicate.
	ErrForbidden = errors.New("not authorized")
	// ErrConflict marks a uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
)

// UserRef is the compact user representation embedded in responses.
type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
