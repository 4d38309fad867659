package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

const (
	selfMagic = 0x53454C46 // "SELF", big-endian on the wire

	selfFlagEncrypted  = 1 << 0
	selfFlagCompressed = 1 << 1

	selfSectionEntrySize = 32
)

// Decryptor decrypts an individual SELF section payload. A caller that
// never expects encrypted content (e.g. a test harness loading plaintext
// fixtures) may leave it nil; any section with the encrypted flag set
// then fails with ErrUnsupportedEncryption.
type Decryptor interface {
	Decrypt(ciphertext, key, iv []byte) ([]byte, error)
}

// Decompressor expands a compressed SELF section payload.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

type selfSection struct {
	offset uint64
	size   uint64
	flags  uint32
	index  uint32
}

// parseSELF reconstructs the plain ELF image a signed SELF wraps and then
// runs it through parseELF64BE.
func parseSELF(data []byte, mem *memory.Manager, dec Decryptor, dcomp Decompressor) (*Descriptor, error) {
	const minHeader = 40
	if len(data) < minHeader {
		return nil, fmt.Errorf("%w: SELF header needs %d bytes, got %d", ErrTruncatedHeader, minHeader, len(data))
	}

	be := binary.BigEndian
	magic := be.Uint32(data[0:4])
	if magic != selfMagic {
		return nil, fmt.Errorf("%w: SELF magic mismatch", ErrBadMagic)
	}

	// Wire layout: magic(4) version(4) flags(4) header_size(4)
	// sec_header_size(4) sec_header_count(2) key_revision(2)
	// content_size(8) self_offset(8).
	headerSize := be.Uint32(data[12:16])
	secHeaderSize := be.Uint32(data[16:20])
	secHeaderCount := be.Uint16(data[20:22])
	contentSize := be.Uint64(data[24:32])
	selfOffset := be.Uint64(data[32:40])

	if headerSize < minHeader {
		return nil, fmt.Errorf("%w: SELF header_size %d below minimum", ErrTruncatedHeader, headerSize)
	}
	if secHeaderSize != 0 && secHeaderSize != selfSectionEntrySize {
		return nil, fmt.Errorf("%w: unexpected SELF section descriptor size %d", ErrTruncatedHeader, secHeaderSize)
	}

	sections := make([]selfSection, 0, secHeaderCount)
	for i := uint16(0); i < secHeaderCount; i++ {
		off := uint64(headerSize) + uint64(i)*selfSectionEntrySize
		if off+selfSectionEntrySize > uint64(len(data)) {
			return nil, fmt.Errorf("%w: SELF section descriptor %d extends past end of file", ErrTruncatedHeader, i)
		}
		s := data[off : off+selfSectionEntrySize]
		sections = append(sections, selfSection{
			offset: be.Uint64(s[0:8]),
			size:   be.Uint64(s[8:16]),
			flags:  be.Uint32(s[16:20]),
			index:  be.Uint32(s[20:24]),
		})
	}

	var key, iv []byte
	keyAreaOff := uint64(headerSize) + uint64(secHeaderCount)*selfSectionEntrySize
	if keyAreaOff+32 <= uint64(len(data)) {
		key = data[keyAreaOff : keyAreaOff+16]
		iv = data[keyAreaOff+16 : keyAreaOff+32]
	}

	image := make([]byte, 0, contentSize)
	for _, s := range sections {
		if s.offset+s.size > uint64(len(data)) {
			return nil, fmt.Errorf("%w: SELF section %d payload extends past end of file", ErrTruncatedHeader, s.index)
		}
		payload := data[s.offset : s.offset+s.size]

		if s.flags&selfFlagEncrypted != 0 {
			if dec == nil {
				return nil, fmt.Errorf("%w: section %d is encrypted and no Decryptor was supplied", ErrUnsupportedEncryption, s.index)
			}
			plain, err := dec.Decrypt(payload, key, iv)
			if err != nil {
				return nil, fmt.Errorf("%w: section %d decrypt: %v", ErrUnsupportedEncryption, s.index, err)
			}
			payload = plain
		}
		if s.flags&selfFlagCompressed != 0 {
			if dcomp == nil {
				return nil, fmt.Errorf("%w: section %d is compressed and no Decompressor was supplied", ErrUnsupportedFormat, s.index)
			}
			plain, err := dcomp.Decompress(payload)
			if err != nil {
				return nil, fmt.Errorf("%w: section %d decompress: %v", ErrUnsupportedFormat, s.index, err)
			}
			payload = plain
		}
		image = append(image, payload...)
	}

	if selfOffset > 0 && selfOffset < uint64(len(image)) {
		image = image[selfOffset:]
	}

	return parseELF64BE(image, mem)
}
