package store

import "errors"

// Sentinel errors for namespaced store operations.
var (
	ErrUnknownSideChannel = errors.New("not a recognized side-channel key")
	ErrNodeNotFound       = errors.New("node namespace not found")
	ErrPathNotFound       = errors.New("path not found in store")
	ErrInvalidPath        = errors.New("invalid store path")
)
