package memory

// Flags is the R/W/X permission bitmask carried by a MemoryRegion, modeled
// directly on the MemoryRegion.flags.
type Flags uint8

const (
	FlagRead Flags = 1 << iota
	FlagWrite
	FlagExec
)

func (f Flags) String() string {
	out := [3]byte{'-', '-', '-'}
	if f&FlagRead != 0 {
		out[0] = 'R'
	}
	if f&FlagWrite != 0 {
		out[1] = 'W'
	}
	if f&FlagExec != 0 {
		out[2] = 'X'
	}
	return string(out[:])
}

// onDemandAlignment is the minimum page alignment for on-demand regions
// created by MaterializeOnDemand.
const onDemandAlignment = 1 << 20 // 1 MiB

// Region is the Go name for MemoryRegion: a declared span of the
// guest address space, optionally backed by a byte buffer. Backing is nil
// until the region is materialized -- a region can be declared ("mapped")
// without committing any host memory to it, which is how the guest's
// sparse, gigabyte-scale address space stays cheap on constrained hosts.
type Region struct {
	Base    uint64
	Size    uint64
	Flags   Flags
	Backing []byte

	// release, if non-nil, undoes whatever allocateBacking did to
	// produce Backing (e.g. unmapping an mmap'd buffer). Unmap calls it.
	release func() error
}

func (r *Region) contains(addr uint64, length uint64) bool {
	if length == 0 {
		return addr >= r.Base && addr < r.Base+r.Size
	}
	end := addr + length
	return addr >= r.Base && end >= addr && end <= r.Base+r.Size
}

func (r *Region) end() uint64 { return r.Base + r.Size }

func (r *Region) materialized() bool { return r.Backing != nil }
