package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds   = errors.New("history index out of range")
	ErrEditDeclined  = errors.New("edit declined")
	ErrUnknownVerb   = errors.New("unknown command")
	ErrMissingName   = errors.New("missing variable name")
	ErrUnknownTarget = errors.New("unknown list target")
)
