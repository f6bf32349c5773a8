package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream market api failure")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
)
