package memory

import "errors"

// Sentinel error kinds for the memory manager's failure modes. Callers
// use errors.Is against these; wrapped errors carry the offending
// address or region for diagnostics.
var (
	ErrUnmapped     = errors.New("memory: address not mapped")
	ErrProtection   = errors.New("memory: protection violation")
	ErrOutOfBounds  = errors.New("memory: access out of region bounds")
	ErrOverlap      = errors.New("memory: region overlaps an existing mapping")
	ErrInvalidRange = errors.New("memory: invalid base/size")
)
