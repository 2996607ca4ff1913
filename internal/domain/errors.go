package domain

import "errors"

var (
	ErrEmptyQuery = errors.New("chat: empty query")
	ErrNotFound   = errors.New("catalog: not found")
	ErrUpstream   = errors.New("upstream unavailable")
)
