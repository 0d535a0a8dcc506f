package ring

import "errors"

var (
	ErrEmptyContainer     = errors.New("ring is empty")
	ErrInvalidIterator    = errors.New("invalid iterator")
	ErrInvalidDereference = errors.New("dereferencing invalid iterator")
	ErrInvalidAdvance     = errors.New("advancing invalid iterator")
)
