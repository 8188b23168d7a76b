package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no document matches.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned by repositories when a write violates a
	// unique index. Repositories translate the store's native duplicate-key
	// signal into this sentinel so services never see driver error shapes.
	ErrDuplicate = errors.New("duplicate key")
)
