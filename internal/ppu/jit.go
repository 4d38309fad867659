package ppu

import (
	"fmt"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// maxBlockInstructions bounds a JIT block's span.
const maxBlockInstructions = 100

// BlockCompiler turns a sequence of raw instruction words starting at
// startPC into a native callable. Compile returns ok=false when the
// block contains any instruction the compiler doesn't understand; the
// caller must then run the whole block through the interpreter instead
// of partially trusting the compiled fast path.
type BlockCompiler interface {
	Compile(startPC uint64, words []uint32) (native NativeBlock, ok bool)
}

// NativeBlock is a compiled block's entry point. It mutates ctx in
// place and returns the PC to resume at.
type NativeBlock func(ctx *Context) (nextPC uint64)

// Block is one cached translation, keyed by its start address.
type Block struct {
	StartPC          uint64
	InstructionCount uint32
	Native           NativeBlock // nil if compilation fell back to the interpreter
	CallCount        uint64
}

// ChainCompiler tries each BlockCompiler in order and returns the first
// one that accepts the whole block, e.g. an optional dlopened
// NativeCompiler ahead of the always-available SoftCompiler. It still
// satisfies BlockCompiler itself, so Cache keeps depending on exactly
// one compiler capability per the design note.
type ChainCompiler struct {
	Compilers []BlockCompiler
}

func (c ChainCompiler) Compile(startPC uint64, words []uint32) (NativeBlock, bool) {
	for _, compiler := range c.Compilers {
		if compiler == nil {
			continue
		}
		if native, ok := compiler.Compile(startPC, words); ok {
			return native, true
		}
	}
	return nil, false
}

// Metrics tallies cache activity across the lifetime of a Cache.
type Metrics struct {
	Compilations uint64
	Hits         uint64
	Misses       uint64
}

// Cache maps start_pc to compiled JIT blocks, discovering and compiling
// on miss and falling back to the interpreter when compilation can't
// cover a block.
type Cache struct {
	blocks   map[uint64]*Block
	compiler BlockCompiler
	mem      *memory.Manager
	interp   *Interpreter
	sink     diag.Sink
	metrics  Metrics
}

// NewCache constructs a Cache layered over interp. compiler may be nil,
// in which case every block falls back to the interpreter — a valid,
// if slow, configuration.
func NewCache(interp *Interpreter, mem *memory.Manager, compiler BlockCompiler, sink diag.Sink) *Cache {
	if sink == nil {
		sink = diag.Noop{}
	}
	return &Cache{
		blocks:   make(map[uint64]*Block),
		compiler: compiler,
		mem:      mem,
		interp:   interp,
		sink:     sink,
	}
}

// Metrics returns a snapshot of cache activity counters.
func (c *Cache) Metrics() Metrics { return c.metrics }

// Clear flushes all cached blocks. The core does not detect
// self-modifying code; callers that write into executable regions must
// call Clear themselves.
func (c *Cache) Clear() {
	c.blocks = make(map[uint64]*Block)
}

// Advance runs one block starting at the interpreter's current PC,
// preferring a cached compiled block and falling back to the
// interpreter on a cache miss that fails to compile, or on any
// instruction the compiler doesn't cover.
func (c *Cache) Advance(maxInstructions int) (int, error) {
	pc := c.interp.Context().PC
	block, hit := c.blocks[pc]
	if !hit {
		c.metrics.Misses++
		discovered, err := c.discover(pc)
		if err != nil {
			return 0, err
		}
		block = discovered
		c.blocks[pc] = block
	} else {
		c.metrics.Hits++
	}

	budget := maxInstructions
	if int(block.InstructionCount) < budget {
		budget = int(block.InstructionCount)
	}

	if block.Native != nil {
		block.CallCount++
		nextPC := block.Native(c.interp.Context())
		c.interp.Context().PC = nextPC
		return int(block.InstructionCount), nil
	}

	return c.interp.ExecuteBlock(budget)
}

// discover reads up to maxBlockInstructions instruction words starting
// at pc, stopping at and including the first branch (primary opcode 16,
// 18, or 19), then attempts compilation.
func (c *Cache) discover(pc uint64) (*Block, error) {
	words := make([]uint32, 0, maxBlockInstructions)
	addr := pc
	for i := 0; i < maxBlockInstructions; i++ {
		word, err := c.mem.ReadU32(addr)
		if err != nil {
			return nil, fmt.Errorf("ppu: jit discovery fetch at 0x%X: %w", addr, err)
		}
		words = append(words, word)
		primary := bits(word, 0, 5)
		addr += 4
		if primary == 16 || primary == 18 || primary == 19 {
			break
		}
	}

	block := &Block{StartPC: pc, InstructionCount: uint32(len(words))}
	if c.compiler == nil {
		return block, nil
	}
	native, ok := c.compiler.Compile(pc, words)
	if !ok {
		return block, nil
	}
	c.metrics.Compilations++
	block.Native = native
	return block, nil
}
