package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for the resolution engine. Handlers map these onto HTTP
// status codes. Nothing below is used for normal control flow: absence of
// optional data (no hardware, no soles) is an empty list, not an error.
var (
	// ErrBaseSpecNotFound: a variant cannot be created for a model with no
	// base specification.
	ErrBaseSpecNotFound = errors.New("model has no base specification")
	ErrSpecNotFound     = errors.New("specification not found")
	ErrModelNotFound    = errors.New("model not found")
	// ErrVariantsExist guards base specification deletion while variants
	// still reference the model.
	ErrVariantsExist = errors.New("model still has variant specifications")
)

// ValidationError carries per-field messages for the Editable → Validated
// transition. It blocks persistence and is surfaced inline to the client.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a DB/transaction failure. The caller's in-memory
// editable state survives so the user can retry without re-entering data.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
