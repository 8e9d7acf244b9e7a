package service

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrResponseNotFound = errors.New("response not found")
	ErrChunkNotFound    = errors.New("chunk not found in session")
	ErrForbidden        = errors.New("resource belongs to another user")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidID        = errors.New("invalid id")
)
