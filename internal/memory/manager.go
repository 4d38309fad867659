// Package memory implements the big-endian guest virtual address
// space: named regions declared up front, backed lazily, with typed
// accessors that present host-native values over big-endian guest
// bytes.
//
// The region/mapping shape generalizes a single fixed-size
// mutex-guarded byte slice plus region table into a sparse,
// on-demand-backed region model covering the guest's full address
// space.
package memory

import (
	"fmt"
	"sync"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

// Manager is the Go name for MemoryManager.
type Manager struct {
	mu      sync.RWMutex
	regions []*Region
	sink    diag.Sink
}

// New creates an empty address space. sink receives diagnostics for
// protection faults, unmapped accesses, and on-demand materializations.
func New(sink diag.Sink) *Manager {
	if sink == nil {
		sink = diag.Noop{}
	}
	return &Manager{sink: sink}
}

// Map declares a region spanning [base, base+size). Backing is not
// allocated here -- see the "may defer backing".
func (m *Manager) Map(base, size uint64, flags Flags) (*Region, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-length region at 0x%X", ErrInvalidRange, base)
	}
	if base+size < base {
		return nil, fmt.Errorf("%w: region at 0x%X size 0x%X wraps the address space", ErrInvalidRange, base, size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findOverlapLocked(base, size); existing != nil {
		return nil, fmt.Errorf("%w: [0x%X, 0x%X) overlaps existing region [0x%X, 0x%X)",
			ErrOverlap, base, base+size, existing.Base, existing.end())
	}

	r := &Region{Base: base, Size: size, Flags: flags}
	m.insertLocked(r)
	m.sink.Logf("memory", "map 0x%X..0x%X flags=%s", base, base+size, flags)
	return r, nil
}

// Unmap removes the region starting exactly at base, releasing its backing
// if materialized.
func (m *Manager) Unmap(base uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.regions {
		if r.Base == base {
			m.regions = append(m.regions[:i], m.regions[i+1:]...)
			if r.release != nil {
				if err := r.release(); err != nil {
					m.sink.Warnf("memory", "release of 0x%X..0x%X failed: %v", r.Base, r.end(), err)
				}
			}
			m.sink.Logf("memory", "unmap 0x%X..0x%X", r.Base, r.end())
			return nil
		}
	}
	return fmt.Errorf("%w: no region based at 0x%X", ErrUnmapped, base)
}

// Read copies len(dst) raw guest bytes starting at vaddr into dst, with no
// endian interpretation. A read that falls outside any declared region
// triggers materialize-on-demand.
func (m *Manager) Read(vaddr uint64, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	region, err := m.regionForRead(vaddr, uint64(len(dst)))
	if err != nil {
		return err
	}
	if region.Flags&FlagRead == 0 {
		m.sink.Warnf("memory", "protection: read of unreadable region at 0x%X (flags=%s)", vaddr, region.Flags)
		return fmt.Errorf("%w: 0x%X is not readable (flags=%s)", ErrProtection, vaddr, region.Flags)
	}
	if !region.contains(vaddr, uint64(len(dst))) {
		return fmt.Errorf("%w: read of 0x%X+%d exceeds region [0x%X, 0x%X)", ErrOutOfBounds, vaddr, len(dst), region.Base, region.end())
	}
	off := vaddr - region.Base
	copy(dst, region.Backing[off:off+uint64(len(dst))])
	return nil
}

// Write copies src into raw guest bytes starting at vaddr. Unlike Read,
// writing into an undeclared range fails rather than auto-mapping: guest
// code that writes must have pre-declared its own region .
func (m *Manager) Write(vaddr uint64, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	region := m.findRegion(vaddr)
	if region == nil {
		return fmt.Errorf("%w: write to 0x%X with no declared region", ErrUnmapped, vaddr)
	}
	if region.Flags&FlagWrite == 0 {
		m.sink.Warnf("memory", "protection: write to read-only region at 0x%X (flags=%s)", vaddr, region.Flags)
		return fmt.Errorf("%w: 0x%X is not writable (flags=%s)", ErrProtection, vaddr, region.Flags)
	}
	if !region.contains(vaddr, uint64(len(src))) {
		return fmt.Errorf("%w: write of 0x%X+%d exceeds region [0x%X, 0x%X)", ErrOutOfBounds, vaddr, len(src), region.Base, region.end())
	}
	m.ensureBacking(region)
	off := vaddr - region.Base
	copy(region.Backing[off:off+uint64(len(src))], src)
	return nil
}

// LoadSegment copies src into the declared region at vaddr, bypassing
// the FlagWrite check Write enforces. Loaders populate PT_LOAD
// segments this way: W is an execute-time protection bit, not a
// restriction on the loader that has to place read-only/executable
// code into memory in the first place.
func (m *Manager) LoadSegment(vaddr uint64, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	region := m.findRegion(vaddr)
	if region == nil {
		return fmt.Errorf("%w: load segment at 0x%X with no declared region", ErrUnmapped, vaddr)
	}
	if !region.contains(vaddr, uint64(len(src))) {
		return fmt.Errorf("%w: segment at 0x%X+%d exceeds region [0x%X, 0x%X)", ErrOutOfBounds, vaddr, len(src), region.Base, region.end())
	}
	m.ensureBacking(region)
	off := vaddr - region.Base
	copy(region.Backing[off:off+uint64(len(src))], src)
	return nil
}

// MaterializeOnDemand is materialize_on_demand: if vaddr falls
// into no declared region, it creates a 1 MiB region aligned down to a
// 1 MiB boundary with RW flags, backed eagerly.
func (m *Manager) MaterializeOnDemand(vaddr uint64) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materializeOnDemandLocked(vaddr)
}

func (m *Manager) materializeOnDemandLocked(vaddr uint64) (*Region, error) {
	base := vaddr &^ uint64(onDemandAlignment-1)
	if existing := m.findOverlapLocked(base, onDemandAlignment); existing != nil {
		return nil, fmt.Errorf("%w: on-demand window [0x%X, 0x%X) overlaps existing region [0x%X, 0x%X)",
			ErrOverlap, base, base+onDemandAlignment, existing.Base, existing.end())
	}
	backing, release, err := allocateBacking(onDemandAlignment)
	if err != nil {
		return nil, err
	}
	r := &Region{Base: base, Size: onDemandAlignment, Flags: FlagRead | FlagWrite, Backing: backing, release: release}
	m.insertLocked(r)
	m.sink.Logf("memory", "materialize-on-demand 0x%X..0x%X for fault at 0x%X", base, base+onDemandAlignment, vaddr)
	return r, nil
}

func (m *Manager) regionForRead(vaddr, length uint64) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.findRegionLocked(vaddr); r != nil {
		m.ensureBackingLocked(r)
		return r, nil
	}
	return m.materializeOnDemandLocked(vaddr)
}

func (m *Manager) findRegion(vaddr uint64) *Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findRegionLocked(vaddr)
}

func (m *Manager) findRegionLocked(vaddr uint64) *Region {
	for _, r := range m.regions {
		if vaddr >= r.Base && vaddr < r.end() {
			return r
		}
	}
	return nil
}

func (m *Manager) findOverlapLocked(base, size uint64) *Region {
	end := base + size
	for _, r := range m.regions {
		if base < r.end() && end > r.Base {
			return r
		}
	}
	return nil
}

func (m *Manager) insertLocked(r *Region) {
	m.regions = append(m.regions, r)
}

func (m *Manager) ensureBacking(r *Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureBackingLocked(r)
}

func (m *Manager) ensureBackingLocked(r *Region) {
	if r.materialized() {
		return
	}
	backing, release, err := allocateBacking(r.Size)
	if err != nil {
		// allocateBacking's fallback path never errors; this is
		// unreachable in practice but kept defensive against future
		// allocator changes.
		m.sink.Errorf("memory", "failed to materialize region 0x%X..0x%X: %v", r.Base, r.end(), err)
		return
	}
	r.Backing = backing
	r.release = release
}

// RegionInfo is a diagnostic snapshot of a declared region, returned by
// DumpRegions. It never exposes the backing buffer itself.
type RegionInfo struct {
	Base         uint64
	Size         uint64
	Flags        Flags
	Materialized bool
}

// DumpRegions enumerates every declared region for diagnostics.
func (m *Manager) DumpRegions() []RegionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RegionInfo, len(m.regions))
	for i, r := range m.regions {
		out[i] = RegionInfo{Base: r.Base, Size: r.Size, Flags: r.Flags, Materialized: r.materialized()}
	}
	return out
}
