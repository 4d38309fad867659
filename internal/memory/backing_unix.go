//go:build unix

package memory

import "golang.org/x/sys/unix"

// allocateBacking commits host memory for a region. On unix hosts this goes
// through an anonymous, private mmap rather than make([]byte, ...): the
// guest's 256 MiB RAM/user-pool/graphics-memory windows are declared far
// more often than they're touched, so backing a region this way lets the
// kernel defer actual physical page commitment to first write instead of
// Go's allocator zeroing the whole slice up front. release unmaps it; it is
// called from Manager.Unmap.
func allocateBacking(size uint64) ([]byte, func() error, error) {
	if size == 0 {
		return nil, func() error { return nil }, nil
	}
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		// Fall back to a plain heap allocation rather than failing the
		// mapping outright -- mmap can be refused under sandboxed or
		// memory-constrained hosts (the stated rationale for
		// lazy backing in the first place).
		return make([]byte, size), func() error { return nil }, nil
	}
	release := func() error {
		return unix.Munmap(buf)
	}
	return buf, release, nil
}
