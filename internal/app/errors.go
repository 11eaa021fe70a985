package service

import "errors"

// Sentinel kinds for page controller errors.
var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrNotStarted    = errors.New("service not started")
)
