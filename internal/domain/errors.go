package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrSameBook    = errors.New("target and comparison book must differ")
	ErrRateLimited = errors.New("rate limited")
	ErrContextDone = errors.New("context cancelled")
)
