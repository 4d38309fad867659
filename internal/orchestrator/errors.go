package orchestrator

import "errors"

// ErrUnsupportedFormat is returned by Load for .pkg/.iso paths, which
// this core's loader never attempts.
var ErrUnsupportedFormat = errors.New("orchestrator: unsupported format")

// ErrNotInitialized is returned by any operation attempted before a
// successful Init.
var ErrNotInitialized = errors.New("orchestrator: not initialized")
