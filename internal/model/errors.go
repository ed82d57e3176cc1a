package model

import "errors"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound covers both a missing record and a record owned by someone else.
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidRange    = errors.New("invalid range")
)
