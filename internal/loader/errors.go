package loader

import "errors"

// Sentinel error kinds, one.2 failure list.
var (
	ErrNotFound              = errors.New("loader: file not found")
	ErrTruncatedHeader       = errors.New("loader: truncated header")
	ErrBadMagic              = errors.New("loader: bad magic")
	ErrWrongArchitecture     = errors.New("loader: wrong architecture")
	ErrUnsupportedEncryption = errors.New("loader: unsupported encryption")
	ErrMemoryMapFailed       = errors.New("loader: memory map failed")
	ErrUnsupportedFormat     = errors.New("loader: unsupported format")
)
