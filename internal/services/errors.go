package services

import "errors"

// ErrInvalidStateTransition is returned when a stage or task transition is
// attempted from a terminal or incompatible state. The operation rejects and
// mutates nothing.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrCatalogInvalid is returned by the catalog loader when seed data fails
// validation. It is fatal at startup; scheduling assumes a validated catalog.
var ErrCatalogInvalid = errors.New("catalog validation failed")
