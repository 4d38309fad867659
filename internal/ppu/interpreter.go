package ppu

import (
	"fmt"
	"math"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
	"github.com/nikitaolenych123-coder/pxs3c/internal/syscalls"
)

// Interpreter steps a PPU instruction stream against shared guest
// memory and the syscall dispatcher. It is the correctness reference;
// Cache (the JIT) is an optimization layered on top of it.
type Interpreter struct {
	ctx  *Context
	mem  *memory.Manager
	sys  *syscalls.Dispatcher
	sink diag.Sink
}

// New constructs an Interpreter with a freshly zeroed Context.
func New(mem *memory.Manager, sys *syscalls.Dispatcher, sink diag.Sink) *Interpreter {
	if sink == nil {
		sink = diag.Noop{}
	}
	return &Interpreter{ctx: &Context{}, mem: mem, sys: sys, sink: sink}
}

// Context exposes the core's architectural state for inspection and
// for the JIT cache, which reads/writes the same GPR/FPR/VR arrays.
func (p *Interpreter) Context() *Context { return p.ctx }

// ExecuteBlock runs up to max instructions, stopping earlier on a halt
// condition (illegal instruction or memory fault). It returns the
// number of instructions actually executed.
func (p *Interpreter) ExecuteBlock(max int) (int, error) {
	p.ctx.Halted = false
	p.ctx.HaltedErr = nil
	executed := 0
	for executed < max {
		if err := p.step(); err != nil {
			p.ctx.Halted = true
			p.ctx.HaltedPC = p.ctx.PC
			p.ctx.HaltedErr = err
			return executed, err
		}
		executed++
		if p.ctx.Halted {
			break
		}
	}
	return executed, nil
}

// step fetches, decodes, and executes exactly one instruction.
func (p *Interpreter) step() error {
	instr, err := p.mem.ReadU32(p.ctx.PC)
	if err != nil {
		return fmt.Errorf("ppu: fetch at pc=0x%X: %w", p.ctx.PC, err)
	}
	nextPC := p.ctx.PC + 4

	primary := bits(instr, 0, 5)
	switch primary {
	case 4:
		p.execVector(instr)
	case 7:
		p.execMulli(instr)
	case 8:
		p.execSubfic(instr)
	case 10:
		p.execCmpli(instr)
	case 11:
		p.execCmpi(instr)
	case 12:
		p.execAddic(instr, false)
	case 13:
		p.execAddic(instr, true)
	case 14:
		p.execAddi(instr, false)
	case 15:
		p.execAddi(instr, true)
	case 16:
		nextPC = p.execBC(instr)
	case 17:
		p.execSC(instr)
	case 18:
		nextPC = p.execB(instr)
	case 19:
		nextPC = p.execBranchExt(instr)
	case 20:
		p.execRlwimi(instr)
	case 21:
		p.execRlwinm(instr)
	case 22:
		p.execRlwnm(instr)
	case 24:
		p.execOri(instr, false)
	case 25:
		p.execOri(instr, true)
	case 26:
		p.execXori(instr, false)
	case 27:
		p.execXori(instr, true)
	case 28:
		p.execAndi(instr, false)
	case 29:
		p.execAndi(instr, true)
	case 31:
		if err := p.execExtended31(instr); err != nil {
			return err
		}
	case 32, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44, 45:
		if err := p.execLoadStore(primary, instr); err != nil {
			return err
		}
	case 58, 62:
		if err := p.execLoadStore64(primary, instr); err != nil {
			return err
		}
	case 59, 63:
		p.execFloat(primary, instr)
	default:
		p.ctx.Halted = true
		p.ctx.HaltedPC = p.ctx.PC
		p.sink.Errorf("ppu", "illegal instruction 0x%08X at pc=0x%X (primary opcode %d)", instr, p.ctx.PC, primary)
		return fmt.Errorf("ppu: illegal instruction 0x%08X at pc=0x%X", instr, p.ctx.PC)
	}

	p.ctx.PC = nextPC
	return nil
}

// --- Arithmetic / logical, primary opcodes 7-15, 24-29 -------------------

func rtRaRb(instr uint32) (rt, ra, rb uint32) {
	return bits(instr, 6, 10), bits(instr, 11, 15), bits(instr, 16, 20)
}

func (p *Interpreter) execAddi(instr uint32, shifted bool) {
	rt, ra, _ := rtRaRb(instr)
	imm := signExtend16(uint16(bits(instr, 16, 31)))
	if shifted {
		imm <<= 16
	}
	var base uint64
	if ra != 0 {
		base = p.ctx.GPR[ra]
	}
	p.ctx.GPR[rt] = base + imm
}

func (p *Interpreter) execOri(instr uint32, shifted bool) {
	rs, ra, _ := rtRaRb(instr)
	imm := uint64(bits(instr, 16, 31))
	if shifted {
		imm <<= 16
	}
	p.ctx.GPR[ra] = p.ctx.GPR[rs] | imm
}

func (p *Interpreter) execXori(instr uint32, shifted bool) {
	rs, ra, _ := rtRaRb(instr)
	imm := uint64(bits(instr, 16, 31))
	if shifted {
		imm <<= 16
	}
	p.ctx.GPR[ra] = p.ctx.GPR[rs] ^ imm
}

func (p *Interpreter) execAndi(instr uint32, shifted bool) {
	rs, ra, _ := rtRaRb(instr)
	imm := uint64(bits(instr, 16, 31))
	if shifted {
		imm <<= 16
	}
	result := p.ctx.GPR[rs] & imm
	p.ctx.GPR[ra] = result
	p.ctx.setCR0(int64(result))
}

func (p *Interpreter) execAddic(instr uint32, setCR bool) {
	rt, ra, _ := rtRaRb(instr)
	imm := signExtend16(uint16(bits(instr, 16, 31)))
	a := p.ctx.GPR[ra]
	result := a + imm
	p.setCarry(result < a)
	p.ctx.GPR[rt] = result
	if setCR {
		p.ctx.setCR0(int64(result))
	}
}

func (p *Interpreter) execSubfic(instr uint32) {
	rt, ra, _ := rtRaRb(instr)
	imm := signExtend16(uint16(bits(instr, 16, 31)))
	a := p.ctx.GPR[ra]
	result := imm - a
	p.setCarry(result <= imm)
	p.ctx.GPR[rt] = result
}

func (p *Interpreter) execMulli(instr uint32) {
	rt, ra, _ := rtRaRb(instr)
	imm := signExtend16(uint16(bits(instr, 16, 31)))
	p.ctx.GPR[rt] = uint64(int64(p.ctx.GPR[ra]) * int64(imm))
}

func (p *Interpreter) execCmpi(instr uint32) {
	bf := bits(instr, 6, 8)
	ra := bits(instr, 11, 15)
	imm := signExtend16(uint16(bits(instr, 16, 31)))
	p.compareSigned(bf, int64(p.ctx.GPR[ra]), int64(imm))
}

func (p *Interpreter) execCmpli(instr uint32) {
	bf := bits(instr, 6, 8)
	ra := bits(instr, 11, 15)
	imm := uint64(bits(instr, 16, 31))
	p.compareUnsigned(bf, p.ctx.GPR[ra], imm)
}

func (p *Interpreter) setCarry(carry bool) {
	if carry {
		p.ctx.XER |= xerCA
	} else {
		p.ctx.XER &^= xerCA
	}
}

// compareSigned implements cmp/cmpi's CR-field write for any of the
// eight CR fields, not just field 0.
func (p *Interpreter) compareSigned(field uint32, a, b int64) {
	base := (7 - field) * 4
	clearMask := uint32(0xF) << base
	p.ctx.CR &^= clearMask
	var bitsOut uint32
	switch {
	case a < b:
		bitsOut = 0x8
	case a > b:
		bitsOut = 0x4
	default:
		bitsOut = 0x2
	}
	if p.ctx.XER&xerSO != 0 {
		bitsOut |= 0x1
	}
	p.ctx.CR |= bitsOut << base
}

func (p *Interpreter) compareUnsigned(field uint32, a, b uint64) {
	base := (7 - field) * 4
	clearMask := uint32(0xF) << base
	p.ctx.CR &^= clearMask
	var bitsOut uint32
	switch {
	case a < b:
		bitsOut = 0x8
	case a > b:
		bitsOut = 0x4
	default:
		bitsOut = 0x2
	}
	if p.ctx.XER&xerSO != 0 {
		bitsOut |= 0x1
	}
	p.ctx.CR |= bitsOut << base
}

// --- Extended opcode 31: register-form arithmetic/logical ----------------

func (p *Interpreter) execExtended31(instr uint32) error {
	xop := bits(instr, 21, 30)
	rt, ra, rb := rtRaRb(instr)
	rc := instr&1 != 0

	switch xop {
	case 266: // add
		result := p.ctx.GPR[ra] + p.ctx.GPR[rb]
		p.ctx.GPR[rt] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 10: // addc
		a, b := p.ctx.GPR[ra], p.ctx.GPR[rb]
		result := a + b
		p.setCarry(result < a)
		p.ctx.GPR[rt] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 40: // subf
		result := p.ctx.GPR[rb] - p.ctx.GPR[ra]
		p.ctx.GPR[rt] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 8: // subfc
		a, b := p.ctx.GPR[ra], p.ctx.GPR[rb]
		result := b - a
		p.setCarry(b >= a)
		p.ctx.GPR[rt] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 28: // and: X-form field named rt here holds the source register rS
		result := p.ctx.GPR[rt] & p.ctx.GPR[rb]
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 444: // or
		result := p.ctx.GPR[rt] | p.ctx.GPR[rb]
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 316: // xor
		result := p.ctx.GPR[rt] ^ p.ctx.GPR[rb]
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 104: // nand
		result := ^(p.ctx.GPR[rt] & p.ctx.GPR[rb])
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 124: // nor
		result := ^(p.ctx.GPR[rt] | p.ctx.GPR[rb])
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 284: // eqv
		result := ^(p.ctx.GPR[rt] ^ p.ctx.GPR[rb])
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 11: // mulhwu
		a := uint64(uint32(p.ctx.GPR[ra]))
		b := uint64(uint32(p.ctx.GPR[rb]))
		p.ctx.GPR[rt] = (a * b) >> 32
	case 824: // slw
		n := p.ctx.GPR[rb] & 0x3F
		var result uint64
		if n < 32 {
			result = uint64(uint32(p.ctx.GPR[rt]) << n)
		}
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 535: // srw
		n := p.ctx.GPR[rb] & 0x3F
		var result uint64
		if n < 32 {
			result = uint64(uint32(p.ctx.GPR[rt]) >> n)
		}
		p.ctx.GPR[ra] = result
		if rc {
			p.ctx.setCR0(int64(result))
		}
	case 539: // sraw
		n := p.ctx.GPR[rb] & 0x3F
		v := int32(uint32(p.ctx.GPR[rt]))
		var result int64
		if n >= 32 {
			if v < 0 {
				result = -1
			}
		} else {
			result = int64(v >> n)
		}
		p.ctx.GPR[ra] = uint64(result)
		if rc {
			p.ctx.setCR0(result)
		}
	case 0: // cmp
		bf := bits(instr, 6, 8)
		p.compareSigned(bf, int64(p.ctx.GPR[ra]), int64(p.ctx.GPR[rb]))
	case 339: // mfspr
		p.execMfspr(instr)
	case 371: // mtspr
		p.execMtspr(instr)
	case 413: // mflr (mfspr LR fast-path, distinct xop per some encodings)
		p.ctx.GPR[rt] = p.ctx.LR
	default:
		p.ctx.Halted = true
		p.sink.Errorf("ppu", "illegal extended-31 instruction 0x%08X (xop=%d) at pc=0x%X", instr, xop, p.ctx.PC)
		return fmt.Errorf("ppu: illegal extended-31 instruction 0x%08X at pc=0x%X", instr, p.ctx.PC)
	}
	return nil
}

const (
	sprXER = 1
	sprLR  = 8
	sprCTR = 9
)

func (p *Interpreter) execMfspr(instr uint32) {
	rt := bits(instr, 6, 10)
	spr := bits(instr, 11, 20)
	switch spr {
	case sprXER:
		p.ctx.GPR[rt] = uint64(p.ctx.XER)
	case sprLR:
		p.ctx.GPR[rt] = p.ctx.LR
	case sprCTR:
		p.ctx.GPR[rt] = p.ctx.CTR
	}
}

func (p *Interpreter) execMtspr(instr uint32) {
	rs := bits(instr, 6, 10)
	spr := bits(instr, 11, 20)
	switch spr {
	case sprXER:
		p.ctx.XER = uint32(p.ctx.GPR[rs])
	case sprLR:
		p.ctx.LR = p.ctx.GPR[rs]
	case sprCTR:
		p.ctx.CTR = p.ctx.GPR[rs]
	}
}

// --- Rotate-mask, primary opcodes 20-22 -----------------------------------

func (p *Interpreter) execRlwinm(instr uint32) {
	rs, ra, _ := rtRaRb(instr)
	sh := bits(instr, 16, 20)
	mb := bits(instr, 21, 25)
	me := bits(instr, 26, 30)
	rc := instr&1 != 0

	rotated := rotl32(uint32(p.ctx.GPR[rs]), sh)
	mask := maskFromTo(mb, me)
	result := uint64(rotated & mask)
	p.ctx.GPR[ra] = result
	if rc {
		p.ctx.setCR0(int64(int32(result)))
	}
}

func (p *Interpreter) execRlwnm(instr uint32) {
	rs, ra, rb := rtRaRb(instr)
	mb := bits(instr, 21, 25)
	me := bits(instr, 26, 30)
	rc := instr&1 != 0

	sh := uint32(p.ctx.GPR[rb]) & 0x1F
	rotated := rotl32(uint32(p.ctx.GPR[rs]), sh)
	mask := maskFromTo(mb, me)
	result := uint64(rotated & mask)
	p.ctx.GPR[ra] = result
	if rc {
		p.ctx.setCR0(int64(int32(result)))
	}
}

func (p *Interpreter) execRlwimi(instr uint32) {
	rs, ra, _ := rtRaRb(instr)
	sh := bits(instr, 16, 20)
	mb := bits(instr, 21, 25)
	me := bits(instr, 26, 30)
	rc := instr&1 != 0

	rotated := rotl32(uint32(p.ctx.GPR[rs]), sh)
	mask := maskFromTo(mb, me)
	existing := uint32(p.ctx.GPR[ra])
	result := uint64((rotated & mask) | (existing &^ mask))
	p.ctx.GPR[ra] = result
	if rc {
		p.ctx.setCR0(int64(int32(result)))
	}
}

// --- Load/store, primary opcodes 32-45 (32-bit forms) ---------------------

func (p *Interpreter) execLoadStore(primary uint32, instr uint32) error {
	rt, ra, _ := rtRaRb(instr)
	disp := signExtend16(uint16(bits(instr, 16, 31)))
	var base uint64
	if ra != 0 {
		base = p.ctx.GPR[ra]
	}
	addr := base + disp

	update := func() {
		if ra != 0 {
			p.ctx.GPR[ra] = addr
		}
	}

	switch primary {
	case 32, 33: // lwz, lwzu
		v, err := p.mem.ReadU32(addr)
		if err != nil {
			return fmt.Errorf("ppu: lwz at 0x%X: %w", addr, err)
		}
		p.ctx.GPR[rt] = uint64(v)
		if primary == 33 {
			update()
		}
	case 34, 35: // lbz, lbzu
		v, err := p.mem.ReadU8(addr)
		if err != nil {
			return fmt.Errorf("ppu: lbz at 0x%X: %w", addr, err)
		}
		p.ctx.GPR[rt] = uint64(v)
		if primary == 35 {
			update()
		}
	case 36, 37: // stw, stwu
		if err := p.mem.WriteU32(addr, uint32(p.ctx.GPR[rt])); err != nil {
			return fmt.Errorf("ppu: stw at 0x%X: %w", addr, err)
		}
		if primary == 37 {
			update()
		}
	case 38, 39: // stb, stbu
		if err := p.mem.WriteU8(addr, uint8(p.ctx.GPR[rt])); err != nil {
			return fmt.Errorf("ppu: stb at 0x%X: %w", addr, err)
		}
		if primary == 39 {
			update()
		}
	case 40, 41: // lhz, lhzu
		v, err := p.mem.ReadU16(addr)
		if err != nil {
			return fmt.Errorf("ppu: lhz at 0x%X: %w", addr, err)
		}
		p.ctx.GPR[rt] = uint64(v)
		if primary == 41 {
			update()
		}
	case 42, 43: // lha, lhau: sign-extend 16-bit
		v, err := p.mem.ReadU16(addr)
		if err != nil {
			return fmt.Errorf("ppu: lha at 0x%X: %w", addr, err)
		}
		p.ctx.GPR[rt] = signExtend16(v)
		if primary == 43 {
			update()
		}
	case 44, 45: // sth, sthu
		if err := p.mem.WriteU16(addr, uint16(p.ctx.GPR[rt])); err != nil {
			return fmt.Errorf("ppu: sth at 0x%X: %w", addr, err)
		}
		if primary == 45 {
			update()
		}
	}
	return nil
}

// --- Load/store, primary opcodes 58, 62 (64-bit ld/ldu/std/stdu) ---------

func (p *Interpreter) execLoadStore64(primary uint32, instr uint32) error {
	rt, ra, _ := rtRaRb(instr)
	ds := bits(instr, 16, 29)
	xop := bits(instr, 30, 31)
	disp := signExtend14(ds) << 2
	var base uint64
	if ra != 0 {
		base = p.ctx.GPR[ra]
	}
	addr := uint64(int64(base) + disp)

	if primary == 58 {
		v, err := p.mem.ReadU64(addr)
		if err != nil {
			return fmt.Errorf("ppu: ld at 0x%X: %w", addr, err)
		}
		p.ctx.GPR[rt] = v
		if xop == 1 && ra != 0 { // ldu
			p.ctx.GPR[ra] = addr
		}
		return nil
	}
	// primary == 62: std / stdu
	if err := p.mem.WriteU64(addr, p.ctx.GPR[rt]); err != nil {
		return fmt.Errorf("ppu: std at 0x%X: %w", addr, err)
	}
	if xop == 1 && ra != 0 { // stdu
		p.ctx.GPR[ra] = addr
	}
	return nil
}

// --- Branch, primary opcodes 16, 18, 19 -----------------------------------

func (p *Interpreter) execB(instr uint32) uint64 {
	li := bits(instr, 6, 29) << 2
	aa := instr&2 != 0
	lk := instr&1 != 0
	disp := signExtend26(li)

	var target uint64
	if aa {
		target = uint64(disp)
	} else {
		target = p.ctx.PC + uint64(disp)
	}
	if lk {
		p.ctx.LR = p.ctx.PC + 4
	}
	return target
}

// checkCondition implements BO/BI evaluation.4: decrement
// CTR if BO bit 2 is clear, evaluate CR[BI] if BO bit 4 is clear, and AND
// the two outcomes with their respective polarity bits.
func (p *Interpreter) checkCondition(bo, bi uint32) bool {
	ctrOK := true
	if bo&0x4 == 0 { // BO_2 clear: CTR is decremented and tested
		p.ctx.CTR--
		ctrCond := p.ctx.CTR != 0
		if bo&0x2 != 0 {
			ctrCond = !ctrCond
		}
		ctrOK = ctrCond
	}
	condOK := true
	if bo&0x10 == 0 { // BO_4 clear: CR[BI] is tested
		crCond := p.ctx.crBit(bi)
		if bo&0x8 == 0 {
			crCond = !crCond
		}
		condOK = crCond
	}
	return ctrOK && condOK
}

func (p *Interpreter) execBC(instr uint32) uint64 {
	bo := bits(instr, 6, 10)
	bi := bits(instr, 11, 15)
	aa := instr&2 != 0
	lk := instr&1 != 0
	fallthroughPC := p.ctx.PC + 4

	if lk {
		p.ctx.LR = fallthroughPC
	}
	if !p.checkCondition(bo, bi) {
		return fallthroughPC
	}
	disp := signExtend14(bits(instr, 16, 29)) << 2
	if aa {
		return uint64(disp)
	}
	return p.ctx.PC + uint64(disp)
}

func (p *Interpreter) execBranchExt(instr uint32) uint64 {
	xop := bits(instr, 21, 30)
	bo := bits(instr, 6, 10)
	bi := bits(instr, 11, 15)
	lk := instr&1 != 0
	fallthroughPC := p.ctx.PC + 4

	var target uint64
	switch xop {
	case 16: // bclr
		target = p.ctx.LR
	case 528: // bcctr
		target = p.ctx.CTR
	default:
		p.ctx.Halted = true
		return fallthroughPC
	}
	if lk {
		p.ctx.LR = fallthroughPC
	}
	if !p.checkCondition(bo, bi) {
		return fallthroughPC
	}
	return target
}

// --- System, primary opcode 17 --------------------------------------------

func (p *Interpreter) execSC(instr uint32) {
	if p.sys == nil {
		return
	}
	callNumber := uint32(p.ctx.GPR[0])
	ctx := &syscalls.Context{
		R3: p.ctx.GPR[3], R4: p.ctx.GPR[4], R5: p.ctx.GPR[5], R6: p.ctx.GPR[6],
		R7: p.ctx.GPR[7], R8: p.ctx.GPR[8], R9: p.ctx.GPR[9], R10: p.ctx.GPR[10],
		ReturnValue: p.ctx.GPR[3],
	}
	if err := p.sys.Dispatch(callNumber, ctx); err != nil {
		p.sink.Errorf("ppu", "syscall %d failed: %v", callNumber, err)
		return
	}
	// ReturnValue is seeded from r3 before Dispatch, so an unhandled call
	// (Handled left false, ReturnValue untouched) copies r3 right back
	// onto itself: the guest sees r3 unchanged rather than a synthetic
	// error code.
	p.ctx.GPR[3] = ctx.ReturnValue
}

// --- Floating point, primary opcodes 59, 63 --------------------------------

func (p *Interpreter) execFloat(primary uint32, instr uint32) {
	// fadd/fsub/fmul/fdiv are A-form with a 5-bit extended opcode at
	// bits 26-30; fmr is X-form with a 10-bit extended opcode at bits
	// 21-30. Both are checked: X-form's extra high bits are zero for
	// the A-form ops listed here, so checking the wider field first is
	// safe.
	xop10 := bits(instr, 21, 30)
	xop5 := bits(instr, 26, 30)
	frt := bits(instr, 6, 10)
	fra := bits(instr, 11, 15)
	frb := bits(instr, 16, 20)
	rc := instr&1 != 0

	if xop10 == 72 { // fmr
		p.ctx.FPR[frt] = p.ctx.FPR[frb]
		return
	}

	switch xop5 {
	case 21: // fadd
		result := p.ctx.FPR[fra] + p.ctx.FPR[frb]
		p.ctx.FPR[frt] = result
		if rc {
			p.ctx.setCR0(int64(math.Float64bits(result)))
		}
	case 20: // fsub
		p.ctx.FPR[frt] = p.ctx.FPR[fra] - p.ctx.FPR[frb]
	case 25: // fmul
		p.ctx.FPR[frt] = p.ctx.FPR[fra] * p.ctx.FPR[frb]
	case 18: // fdiv: skip when divisor is exactly zero.4
		if p.ctx.FPR[frb] != 0 {
			p.ctx.FPR[frt] = p.ctx.FPR[fra] / p.ctx.FPR[frb]
		}
	}
	_ = primary
}

// --- Altivec/vector, primary opcode 4 --------------------------------------

func (p *Interpreter) execVector(instr uint32) {
	xop := bits(instr, 21, 31)
	vrt := bits(instr, 6, 10)
	vra := bits(instr, 11, 15)
	vrb := bits(instr, 16, 20)

	switch xop {
	case 10: // vaddfp
		for i := 0; i < 4; i++ {
			a := math.Float32frombits(p.ctx.VR[vra][i])
			b := math.Float32frombits(p.ctx.VR[vrb][i])
			p.ctx.VR[vrt][i] = math.Float32bits(a + b)
		}
	case 74: // vsubfp
		for i := 0; i < 4; i++ {
			a := math.Float32frombits(p.ctx.VR[vra][i])
			b := math.Float32frombits(p.ctx.VR[vrb][i])
			p.ctx.VR[vrt][i] = math.Float32bits(a - b)
		}
	case 34: // vmulfp, documented here as 4-wide element-wise
		for i := 0; i < 4; i++ {
			a := math.Float32frombits(p.ctx.VR[vra][i])
			b := math.Float32frombits(p.ctx.VR[vrb][i])
			p.ctx.VR[vrt][i] = math.Float32bits(a * b)
		}
	case 1028: // vand
		for i := 0; i < 4; i++ {
			p.ctx.VR[vrt][i] = p.ctx.VR[vra][i] & p.ctx.VR[vrb][i]
		}
	case 1156: // vor
		for i := 0; i < 4; i++ {
			p.ctx.VR[vrt][i] = p.ctx.VR[vra][i] | p.ctx.VR[vrb][i]
		}
	case 1220: // vxor
		for i := 0; i < 4; i++ {
			p.ctx.VR[vrt][i] = p.ctx.VR[vra][i] ^ p.ctx.VR[vrb][i]
		}
	}
}
