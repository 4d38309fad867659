package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

const (
	elfMagic0 = 0x7F
	elfMagic1 = 'E'
	elfMagic2 = 'L'
	elfMagic3 = 'F'

	elfClass64       = 2
	elfDataBigEndian = 2
	elfMachinePPC64  = 21

	ptLoad = 1

	elf64EhdrSize = 64
	elf64PhdrSize = 56
)

// Segment is ELF load descriptor segment entry.
type Segment struct {
	VAddr  uint64
	FileSz uint64
	MemSz  uint64
	Flags  uint32 // PF_X=1, PF_W=2, PF_R=4
}

// Descriptor is ELF load descriptor.
type Descriptor struct {
	Entry    uint64
	Segments []Segment
}

// parseELF64BE parses a plain, big-endian, 64-bit PowerPC ELF image and
// populates mem with its PT_LOAD segments.
func parseELF64BE(data []byte, mem *memory.Manager) (*Descriptor, error) {
	if len(data) < elf64EhdrSize {
		return nil, fmt.Errorf("%w: ELF header needs %d bytes, got %d", ErrTruncatedHeader, elf64EhdrSize, len(data))
	}
	if data[0] != elfMagic0 || data[1] != elfMagic1 || data[2] != elfMagic2 || data[3] != elfMagic3 {
		return nil, fmt.Errorf("%w: ELF magic mismatch", ErrBadMagic)
	}
	if data[4] != elfClass64 {
		return nil, fmt.Errorf("%w: not a 64-bit ELF (EI_CLASS=%d)", ErrWrongArchitecture, data[4])
	}
	if data[5] != elfDataBigEndian {
		return nil, fmt.Errorf("%w: not a big-endian ELF (EI_DATA=%d)", ErrWrongArchitecture, data[5])
	}

	be := binary.BigEndian
	machine := be.Uint16(data[18:20])
	if machine != elfMachinePPC64 {
		return nil, fmt.Errorf("%w: e_machine=%d, want PPC64 (%d)", ErrWrongArchitecture, machine, elfMachinePPC64)
	}

	entry := be.Uint64(data[24:32])
	phoff := be.Uint64(data[32:40])
	phentsize := be.Uint16(data[54:56])
	phnum := be.Uint16(data[56:58])

	if phentsize != 0 && phentsize != elf64PhdrSize {
		return nil, fmt.Errorf("%w: unexpected program header entry size %d", ErrTruncatedHeader, phentsize)
	}

	desc := &Descriptor{Entry: entry}

	for i := uint16(0); i < phnum; i++ {
		off := phoff + uint64(i)*elf64PhdrSize
		if off+elf64PhdrSize > uint64(len(data)) {
			return nil, fmt.Errorf("%w: program header %d extends past end of file", ErrTruncatedHeader, i)
		}
		ph := data[off : off+elf64PhdrSize]
		typ := be.Uint32(ph[0:4])
		if typ != ptLoad {
			continue
		}
		flags := be.Uint32(ph[4:8])
		fileOff := be.Uint64(ph[8:16])
		vaddr := be.Uint64(ph[16:24])
		filesz := be.Uint64(ph[32:40])
		memsz := be.Uint64(ph[40:48])

		seg := Segment{VAddr: vaddr, FileSz: filesz, MemSz: memsz, Flags: flags}
		desc.Segments = append(desc.Segments, seg)

		memFlags := elfFlagsToMemory(flags)
		if _, err := mem.Map(vaddr, memsz, memFlags); err != nil {
			return nil, fmt.Errorf("%w: segment %d (vaddr=0x%X size=0x%X): %v", ErrMemoryMapFailed, i, vaddr, memsz, err)
		}
		if fileOff+filesz > uint64(len(data)) {
			return nil, fmt.Errorf("%w: segment %d file-resident prefix extends past end of file", ErrTruncatedHeader, i)
		}
		if filesz > 0 {
			if err := mem.LoadSegment(vaddr, data[fileOff:fileOff+filesz]); err != nil {
				return nil, fmt.Errorf("%w: segment %d copy: %v", ErrMemoryMapFailed, i, err)
			}
		}
		// The tail (memsz - filesz) is implicitly zero: the region was
		// just mapped and its backing buffer is zero-initialized.
	}

	return desc, nil
}

func elfFlagsToMemory(phFlags uint32) memory.Flags {
	var f memory.Flags
	const (
		pfX = 1
		pfW = 2
		pfR = 4
	)
	if phFlags&pfR != 0 {
		f |= memory.FlagRead
	}
	if phFlags&pfW != 0 {
		f |= memory.FlagWrite
	}
	if phFlags&pfX != 0 {
		f |= memory.FlagExec
	}
	return f
}
