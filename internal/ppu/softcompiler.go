package ppu

// SoftCompiler is the baseline BlockCompiler: a small, always-available
// translator covering integer add/sub/or/and/xor, their immediate
// forms, compare-and-set-CR-field-0, and simple register-to-register
// moves. Any instruction outside that subset makes
// the whole block ineligible — the interpreter remains the source of
// truth, so a partially-translated block is never executed.
type SoftCompiler struct{}

// Compile implements BlockCompiler. A block's final word is commonly
// the unconditional branch that ended discovery; its target is fully
// resolvable at compile time (displacement, AA and LK all live in the
// instruction word), so it is folded into the returned next_pc rather
// than run as a register-mutating op.
func (SoftCompiler) Compile(startPC uint64, words []uint32) (NativeBlock, bool) {
	straight := words
	var tail *compiledBranch
	if last := words[len(words)-1]; bits(last, 0, 5) == 18 {
		tail = compileUnconditionalBranch(startPC, uint64(len(words)-1)*4, last)
		straight = words[:len(words)-1]
	}

	ops := make([]compiledOp, 0, len(straight))
	for _, w := range straight {
		op, ok := translateOp(w)
		if !ok {
			return nil, false
		}
		ops = append(ops, op)
	}
	blockLen := uint64(len(words)) * 4

	return func(ctx *Context) uint64 {
		for _, op := range ops {
			op(ctx)
		}
		if tail != nil {
			if tail.link {
				ctx.LR = tail.linkPC
			}
			return tail.target
		}
		return startPC + blockLen
	}, true
}

type compiledBranch struct {
	target uint64
	link   bool
	linkPC uint64
}

// compileUnconditionalBranch resolves a primary-18 (b) instruction's
// target at compile time. offset is the branch word's position within
// the block, in bytes from startPC.
func compileUnconditionalBranch(startPC, offset uint64, instr uint32) *compiledBranch {
	li := bits(instr, 6, 29) << 2
	aa := instr&2 != 0
	lk := instr&1 != 0
	disp := signExtend26(li)
	instrPC := startPC + offset

	var target uint64
	if aa {
		target = uint64(disp)
	} else {
		target = instrPC + uint64(disp)
	}
	return &compiledBranch{target: target, link: lk, linkPC: instrPC + 4}
}

type compiledOp func(ctx *Context)

// translateOp recognizes the subset of instructions SoftCompiler
// covers. It never touches memory: only register-to-register,
// immediate, and CR0 state, matching the scope the design assigns the JIT.
func translateOp(w uint32) (compiledOp, bool) {
	primary := bits(w, 0, 5)
	rt, ra, rb := rtRaRb(w)

	switch primary {
	case 14: // addi
		imm := signExtend16(uint16(bits(w, 16, 31)))
		return func(ctx *Context) {
			var base uint64
			if ra != 0 {
				base = ctx.GPR[ra]
			}
			ctx.GPR[rt] = base + imm
		}, true
	case 24: // ori
		imm := uint64(bits(w, 16, 31))
		return func(ctx *Context) { ctx.GPR[ra] = ctx.GPR[rt] | imm }, true
	case 26: // xori
		imm := uint64(bits(w, 16, 31))
		return func(ctx *Context) { ctx.GPR[ra] = ctx.GPR[rt] ^ imm }, true
	case 28: // andi.
		imm := uint64(bits(w, 16, 31))
		return func(ctx *Context) {
			result := ctx.GPR[rt] & imm
			ctx.GPR[ra] = result
			ctx.setCR0(int64(result))
		}, true
	case 11: // cmpi, field 0 only
		if bits(w, 6, 8) != 0 {
			return nil, false
		}
		imm := signExtend16(uint16(bits(w, 16, 31)))
		return func(ctx *Context) { ctx.compareSignedCR0(int64(ctx.GPR[ra]), int64(imm)) }, true
	case 31:
		return translateExtended31(w, rt, ra, rb)
	default:
		return nil, false
	}
}

func translateExtended31(w uint32, rt, ra, rb uint32) (compiledOp, bool) {
	xop := bits(w, 21, 30)
	rc := w&1 != 0

	switch xop {
	case 266: // add
		return func(ctx *Context) {
			result := ctx.GPR[ra] + ctx.GPR[rb]
			ctx.GPR[rt] = result
			if rc {
				ctx.setCR0(int64(result))
			}
		}, true
	case 40: // subf
		return func(ctx *Context) {
			result := ctx.GPR[rb] - ctx.GPR[ra]
			ctx.GPR[rt] = result
			if rc {
				ctx.setCR0(int64(result))
			}
		}, true
	case 444: // or
		return func(ctx *Context) {
			result := ctx.GPR[rt] | ctx.GPR[rb]
			ctx.GPR[ra] = result
			if rc {
				ctx.setCR0(int64(result))
			}
		}, true
	case 28: // and
		return func(ctx *Context) {
			result := ctx.GPR[rt] & ctx.GPR[rb]
			ctx.GPR[ra] = result
			if rc {
				ctx.setCR0(int64(result))
			}
		}, true
	case 316: // xor
		return func(ctx *Context) {
			result := ctx.GPR[rt] ^ ctx.GPR[rb]
			ctx.GPR[ra] = result
			if rc {
				ctx.setCR0(int64(result))
			}
		}, true
	case 0: // cmp, field 0 only
		if bits(w, 6, 8) != 0 {
			return nil, false
		}
		return func(ctx *Context) { ctx.compareSignedCR0(int64(ctx.GPR[ra]), int64(ctx.GPR[rb])) }, true
	default:
		return nil, false
	}
}
