package spu

import "encoding/binary"

/*
Instruction encoding (32 bits, big-endian on the wire, decoded
host-native after the fetch byte-swap). This emulator targets the
subset of the SPU ISA calls out as sufficient to run boot
stubs; it does not claim bit-for-bit fidelity to real Cell SPU
encodings, only internal consistency.

Two forms:

	RR  (a, s, m, or, and, xor):
	  bits[0:8)   Opcode   (8 bits)
	  bits[8:15)  RT       (7 bits)
	  bits[15:22) RA       (7 bits)
	  bits[22:29) RB       (7 bits)
	  bits[29:32) unused   (3 bits)

	RI10 (ai, lqd, stqd):
	  bits[0:8)   Opcode   (8 bits)
	  bits[8:15)  RT       (7 bits)
	  bits[15:22) RA       (7 bits) -- base register; 0(r2) means RA=r2
	  bits[22:32) Imm10    (10 bits, sign-extended for ai)

	RI17 (il, ilh, ilhu, br, brsl):
	  bits[0:8)   Opcode   (8 bits)
	  bits[8:15)  RT       (7 bits, unused by br)
	  bits[15:32) Imm17    (17 bits)

lqd/stqd compute their effective local-store byte offset as
RA[lane0] + (Imm10 << 2) * 16: the displacement field is left-shifted by
2 and the result is interpreted as a quadword index (16 bytes per
quadword), per the "the 16-bit offset is left-shifted by 2,
interpreted as a quadword index" — RA supplies the "(r2)" base named in
the scenario spelling "stqd r1, 0(r2)".
*/

const (
	opA    = 0x01 // a    rt, ra, rb       -- rt = ra + rb
	opAI   = 0x02 // ai   rt, ra, imm10    -- rt = ra + sext(imm10)
	opS    = 0x03 // s    rt, ra, rb       -- rt = rb - ra
	opM    = 0x04 // m    rt, ra, rb       -- rt = ra * rb (low 32 bits per lane)
	opOR   = 0x05 // or   rt, ra, rb
	opXOR  = 0x06 // xor  rt, ra, rb
	opAND  = 0x07 // and  rt, ra, rb
	opLQD  = 0x08 // lqd  rt, imm10(ra) -- quadword index relative to RA
	opSTQD = 0x09 // stqd rt, imm10(ra) -- quadword index relative to RA
	opBR   = 0x0A // br   imm17
	opBRSL = 0x0B // brsl rt, imm17
	opIL   = 0x0C // il   rt, imm16 -- word 0 = sext(imm16), words 1-3 cleared
	opILH  = 0x0D // ilh  rt, imm16 -- word 0 = zext(imm16), words 1-3 cleared
	opILHU = 0x0E // ilhu rt, imm16 -- word 0 = imm16<<16, words 1-3 cleared
)

func decodeRR(word uint32) (opcode, rt, ra, rb uint32) {
	opcode = word >> 24
	rt = (word >> 17) & 0x7F
	ra = (word >> 10) & 0x7F
	rb = (word >> 3) & 0x7F
	return
}

func decodeRI10(word uint32) (opcode, rt, ra uint32, imm int32) {
	opcode = word >> 24
	rt = (word >> 17) & 0x7F
	ra = (word >> 10) & 0x7F
	raw := word & 0x3FF
	if raw&0x200 != 0 {
		imm = int32(raw) - (1 << 10)
	} else {
		imm = int32(raw)
	}
	return
}

func decodeRI17(word uint32) (opcode, rt uint32, imm uint32) {
	opcode = word >> 24
	rt = (word >> 17) & 0x7F
	imm = word & 0x1FFFF
	return
}

// execute decodes and runs a single instruction word against u's state.
func (u *Unit) execute(word uint32) {
	opcode := word >> 24
	switch opcode {
	case opA:
		_, rt, ra, rb := decodeRR(word)
		u.lane3(rt, ra, rb, func(a, b uint32) uint32 { return a + b })
	case opS:
		_, rt, ra, rb := decodeRR(word)
		u.lane3(rt, ra, rb, func(a, b uint32) uint32 { return b - a })
	case opM:
		_, rt, ra, rb := decodeRR(word)
		u.lane3(rt, ra, rb, func(a, b uint32) uint32 { return a * b })
	case opOR:
		_, rt, ra, rb := decodeRR(word)
		u.lane3(rt, ra, rb, func(a, b uint32) uint32 { return a | b })
	case opXOR:
		_, rt, ra, rb := decodeRR(word)
		u.lane3(rt, ra, rb, func(a, b uint32) uint32 { return a ^ b })
	case opAND:
		_, rt, ra, rb := decodeRR(word)
		u.lane3(rt, ra, rb, func(a, b uint32) uint32 { return a & b })
	case opAI:
		_, rt, ra, imm := decodeRI10(word)
		for i := 0; i < 4; i++ {
			u.Regs[rt][i] = u.Regs[ra][i] + uint32(imm)
		}
	case opLQD:
		u.execLQD(word)
	case opSTQD:
		u.execSTQD(word)
	case opBR:
		_, _, imm := decodeRI17(word)
		u.PC = imm
		return
	case opBRSL:
		_, rt, imm := decodeRI17(word)
		linkPC := u.PC + 4
		u.Regs[rt] = Register{linkPC, 0, 0, 0}
		u.PC = imm
		return
	case opIL:
		_, rt, imm := decodeRI17(word)
		v := uint32(int32(int16(uint16(imm))))
		u.Regs[rt] = Register{v, 0, 0, 0}
	case opILH:
		_, rt, imm := decodeRI17(word)
		v := imm & 0xFFFF
		u.Regs[rt] = Register{v, 0, 0, 0}
	case opILHU:
		_, rt, imm := decodeRI17(word)
		v := (imm & 0xFFFF) << 16
		u.Regs[rt] = Register{v, 0, 0, 0}
	default:
		u.sink.Warnf("spu", "unit %d: unknown opcode 0x%02X at pc=0x%X; treated as nop", u.ID, opcode, u.PC)
	}
	u.PC += 4
}

func (u *Unit) lane3(rt, ra, rb uint32, f func(a, b uint32) uint32) {
	for i := 0; i < 4; i++ {
		u.Regs[rt][i] = f(u.Regs[ra][i], u.Regs[rb][i])
	}
}

// quadwordOffset resolves lqd/stqd's effective local-store byte offset:
// the base register's lane 0 plus the displacement field, left-shifted
// by 2 and interpreted as a quadword (16-byte) index.
func (u *Unit) quadwordOffset(ra uint32, imm int32) uint32 {
	quadIndex := uint32(imm) << 2
	return u.Regs[ra][0] + quadIndex*16
}

func (u *Unit) execLQD(word uint32) {
	_, rt, ra, imm := decodeRI10(word)
	off := u.quadwordOffset(ra, imm)
	if !u.boundsOK(off) {
		u.sink.Warnf("spu", "unit %d: lqd out of bounds at offset 0x%X; skipped", u.ID, off)
		return
	}
	for i := 0; i < 4; i++ {
		base := off + uint32(i)*4
		u.Regs[rt][i] = binary.BigEndian.Uint32(u.LocalStore[base : base+4])
	}
}

func (u *Unit) execSTQD(word uint32) {
	_, rt, ra, imm := decodeRI10(word)
	off := u.quadwordOffset(ra, imm)
	if !u.boundsOK(off) {
		u.sink.Warnf("spu", "unit %d: stqd out of bounds at offset 0x%X; skipped", u.ID, off)
		return
	}
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint32(u.LocalStore[off+uint32(i)*4:], u.Regs[rt][i])
	}
}
