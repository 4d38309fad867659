//go:build !unix

package memory

// allocateBacking on non-unix hosts falls back to a plain heap allocation;
// there is no portable anonymous-mmap primitive in golang.org/x/sys outside
// the unix build tag.
func allocateBacking(size uint64) ([]byte, func() error, error) {
	return make([]byte, size), func() error { return nil }, nil
}
