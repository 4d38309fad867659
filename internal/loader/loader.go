// Package loader turns an ELF64 big-endian PPC64 image, plain or wrapped
// in a SELF container, into resident guest memory and an entry point.
package loader

import (
	"fmt"
	"os"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// Loader owns the collaborators needed to turn a file on disk into
// mapped guest memory: the memory manager it materializes segments
// into, and the optional crypto/compression hooks a signed SELF needs.
type Loader struct {
	mem   *memory.Manager
	sink  diag.Sink
	dec   Decryptor
	dcomp Decompressor
}

// New constructs a Loader targeting mem. dec and dcomp may be nil if the
// caller never intends to load encrypted or compressed SELF sections.
func New(mem *memory.Manager, sink diag.Sink, dec Decryptor, dcomp Decompressor) *Loader {
	if sink == nil {
		sink = diag.Noop{}
	}
	return &Loader{mem: mem, sink: sink, dec: dec, dcomp: dcomp}
}

// Load reads path and dispatches to the SELF or plain-ELF path by magic.
func (l *Loader) Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	desc, err := l.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	l.sink.Logf("loader", "loaded %s: entry=0x%X segments=%d", path, desc.Entry, len(desc.Segments))
	return desc, nil
}

// LoadBytes is Load without the filesystem round-trip, for callers that
// already have the image in memory (tests, archives, network transfer).
func (l *Loader) LoadBytes(data []byte) (*Descriptor, error) {
	if len(data) >= 4 && data[0] == 'S' && data[1] == 'E' && data[2] == 'L' && data[3] == 'F' {
		return parseSELF(data, l.mem, l.dec, l.dcomp)
	}
	if len(data) >= 4 && data[0] == elfMagic0 && data[1] == elfMagic1 && data[2] == elfMagic2 && data[3] == elfMagic3 {
		return parseELF64BE(data, l.mem)
	}
	return nil, fmt.Errorf("%w: neither SELF nor ELF magic recognized", ErrBadMagic)
}
