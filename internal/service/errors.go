package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyProcessed = errors.New("request already processed")
	ErrConflict         = errors.New("conflict")
	// ErrPartialFailure marks a multi-write sequence that stopped midway and
	// left state an operator must reconcile. Always logged with the orphaned
	// ids before being returned.
	ErrPartialFailure = errors.New("partial failure")
)
