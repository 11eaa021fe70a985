package query

import "errors"

// Sentinel kinds for statement construction.
var (
	ErrUnsafeIdentifier = errors.New("unsafe sql identifier")
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidLimit     = errors.New("invalid limit")
	ErrEmptyTerm        = errors.New("empty search term")
	ErrUnknownKind      = errors.New("unknown search kind")
)
