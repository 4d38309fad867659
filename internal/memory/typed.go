package memory

import "encoding/binary"

// ReadU8 returns the byte at vaddr. There is no endian concern at one byte.
func (m *Manager) ReadU8(vaddr uint64) (uint8, error) {
	var buf [1]byte
	if err := m.Read(vaddr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteU8 writes the byte at vaddr.
func (m *Manager) WriteU8(vaddr uint64, v uint8) error {
	return m.Write(vaddr, []byte{v})
}

// ReadU16 returns the host-native uint16 stored in big-endian guest memory
// at vaddr: the raw bytes are decoded as if by a native little-endian load
// and then byte-swapped, per the invariant that typed accessors
// are swap wrappers over unswapped Read/Write.
func (m *Manager) ReadU16(vaddr uint64) (uint16, error) {
	var buf [2]byte
	if err := m.Read(vaddr, buf[:]); err != nil {
		return 0, err
	}
	return swap16(binary.LittleEndian.Uint16(buf[:])), nil
}

// WriteU16 writes v at vaddr such that the resulting raw bytes are v's
// big-endian encoding.
func (m *Manager) WriteU16(vaddr uint64, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], swap16(v))
	return m.Write(vaddr, buf[:])
}

// ReadU32 is ReadU16's 32-bit counterpart.
func (m *Manager) ReadU32(vaddr uint64) (uint32, error) {
	var buf [4]byte
	if err := m.Read(vaddr, buf[:]); err != nil {
		return 0, err
	}
	return swap32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteU32 is WriteU16's 32-bit counterpart.
func (m *Manager) WriteU32(vaddr uint64, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], swap32(v))
	return m.Write(vaddr, buf[:])
}

// ReadU64 is ReadU16's 64-bit counterpart.
func (m *Manager) ReadU64(vaddr uint64) (uint64, error) {
	var buf [8]byte
	if err := m.Read(vaddr, buf[:]); err != nil {
		return 0, err
	}
	return swap64(binary.LittleEndian.Uint64(buf[:])), nil
}

// WriteU64 is WriteU16's 64-bit counterpart.
func (m *Manager) WriteU64(vaddr uint64, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], swap64(v))
	return m.Write(vaddr, buf[:])
}
