package cache

import "errors"

// ErrBackend marks failures of a remote cache backend.
var ErrBackend = errors.New("cache backend error")
