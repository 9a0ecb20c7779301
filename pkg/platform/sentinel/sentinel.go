package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: row does not exist (only for writes; reads return nil, nil)
//   - ErrConflict: unique constraint or concurrent write lost
//   - ErrAlreadyUsed: one-shot field already set (donor response)
//   - ErrInvalidState: entity in wrong state for the requested transition
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
