//go:build amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm

// This package's typed accessors assume a little-endian host (see swap32
// and friends in swap.go): they byte-swap guest-resident big-endian words
// into host-native values. This file compiles on known LE targets; the
// sibling file host_endian_unsupported.go is a deliberate compile error
// on anything else, guarding that little-endian assumption at build time.

package memory
