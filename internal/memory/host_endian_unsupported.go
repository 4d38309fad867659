//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package memory

// This package's byte-swap assumption (see swap.go) has not been validated
// on big-endian hosts; refuse to run rather than silently produce wrong
// guest memory contents.
func init() {
	panic("pxs3c/internal/memory: unsupported host byte order")
}
