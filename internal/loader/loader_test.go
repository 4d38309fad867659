package loader

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// buildELF64BE assembles a minimal ELF64 big-endian PPC64 image with a
// single PT_LOAD segment carrying payload at vaddr, with memsz larger
// than filesz to exercise the zero-filled tail.
func buildELF64BE(entry, vaddr uint64, payload []byte, memsz uint64) []byte {
	be := binary.BigEndian
	const ehdrSize = elf64EhdrSize
	const phdrSize = elf64PhdrSize
	fileOff := uint64(ehdrSize + phdrSize)

	buf := make([]byte, fileOff+uint64(len(payload)))

	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = elfClass64
	buf[5] = elfDataBigEndian
	buf[6] = 1 // EI_VERSION
	be.PutUint16(buf[16:18], 2) // e_type = ET_EXEC
	be.PutUint16(buf[18:20], elfMachinePPC64)
	be.PutUint32(buf[20:24], 1) // e_version
	be.PutUint64(buf[24:32], entry)
	be.PutUint64(buf[32:40], ehdrSize) // e_phoff
	be.PutUint16(buf[54:56], phdrSize) // e_phentsize
	be.PutUint16(buf[56:58], 1)        // e_phnum

	ph := buf[ehdrSize : ehdrSize+phdrSize]
	be.PutUint32(ph[0:4], ptLoad)
	be.PutUint32(ph[4:8], 5) // PF_R|PF_X
	be.PutUint64(ph[8:16], fileOff)
	be.PutUint64(ph[16:24], vaddr)
	be.PutUint64(ph[32:40], uint64(len(payload)))
	be.PutUint64(ph[40:48], memsz)

	copy(buf[fileOff:], payload)
	return buf
}

func TestLoadPlainELFMapsSegmentAndEntry(t *testing.T) {
	mem := memory.New(diag.Noop{})
	payload := []byte{0x60, 0x00, 0x00, 0x00} // nop
	img := buildELF64BE(0x1000, 0x1000, payload, 0x2000)

	l := New(mem, diag.Noop{}, nil, nil)
	desc, err := l.LoadBytes(img)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if desc.Entry != 0x1000 {
		t.Fatalf("Entry = 0x%X, want 0x1000", desc.Entry)
	}
	if len(desc.Segments) != 1 {
		t.Fatalf("Segments = %d, want 1", len(desc.Segments))
	}

	got, err := mem.ReadU32(0x1000)
	if err != nil {
		t.Fatalf("ReadU32 of loaded segment: %v", err)
	}
	if got != 0x60000000 {
		t.Fatalf("loaded word = 0x%X, want 0x60000000", got)
	}

	// The tail beyond filesz (memsz=0x2000, filesz=4) must read as zero.
	tail, err := mem.ReadU32(0x1000 + 0x1000)
	if err != nil {
		t.Fatalf("ReadU32 of zero-filled tail: %v", err)
	}
	if tail != 0 {
		t.Fatalf("tail word = 0x%X, want 0", tail)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	mem := memory.New(diag.Noop{})
	l := New(mem, diag.Noop{}, nil, nil)
	_, err := l.LoadBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestLoadRejectsWrongArchitecture(t *testing.T) {
	mem := memory.New(diag.Noop{})
	img := buildELF64BE(0x1000, 0x1000, []byte{0x60, 0x00, 0x00, 0x00}, 0x1000)
	binary.BigEndian.PutUint16(img[18:20], 0x3E) // x86-64, not PPC64
	l := New(mem, diag.Noop{}, nil, nil)
	_, err := l.LoadBytes(img)
	if !errors.Is(err, ErrWrongArchitecture) {
		t.Fatalf("err = %v, want ErrWrongArchitecture", err)
	}
}

func TestLoadTruncatedHeaderFails(t *testing.T) {
	mem := memory.New(diag.Noop{})
	l := New(mem, diag.Noop{}, nil, nil)
	_, err := l.LoadBytes([]byte{0x7F, 'E', 'L', 'F', 2, 2, 1})
	if !errors.Is(err, ErrTruncatedHeader) {
		t.Fatalf("err = %v, want ErrTruncatedHeader", err)
	}
}

func TestLoadMissingFileReturnsNotFound(t *testing.T) {
	mem := memory.New(diag.Noop{})
	l := New(mem, diag.Noop{}, nil, nil)
	_, err := l.Load("/nonexistent/path/to/eboot.elf")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestSELFEncryptedSectionWithoutDecryptorFails exercises the SELF error path
// without needing a full wire-format fixture: a minimal header
// declaring one encrypted section, and no Decryptor supplied.
func TestSELFEncryptedSectionWithoutDecryptorFails(t *testing.T) {
	be := binary.BigEndian
	header := make([]byte, 40+32)
	be.PutUint32(header[0:4], selfMagic)
	be.PutUint32(header[12:16], 40)                   // header_size
	be.PutUint32(header[16:20], selfSectionEntrySize) // sec_header_size
	be.PutUint16(header[20:22], 1)                    // sec_header_count
	be.PutUint64(header[24:32], 4)                    // content_size
	be.PutUint64(header[32:40], 0)                    // self_offset

	sec := header[40:72]
	be.PutUint64(sec[0:8], 72) // offset (past header+descriptor, but file is short; we extend below)
	be.PutUint64(sec[8:16], 4) // size
	be.PutUint32(sec[16:20], selfFlagEncrypted)

	payload := []byte{1, 2, 3, 4}
	img := append(header, payload...)

	mem := memory.New(diag.Noop{})
	l := New(mem, diag.Noop{}, nil, nil)
	_, err := l.LoadBytes(img)
	if !errors.Is(err, ErrUnsupportedEncryption) {
		t.Fatalf("err = %v, want ErrUnsupportedEncryption", err)
	}
}
