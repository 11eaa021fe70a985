package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrOpenStore = errors.New("open analytics store")
	ErrQuery     = errors.New("query analytics store")
	ErrClosed    = errors.New("store closed")
)
