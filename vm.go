package main

import (
	"encoding/binary"
	"io"

	"github.com/MarcosAndradeV/chs/internal/flushio"
	"github.com/MarcosAndradeV/chs/internal/logio"
)

const defaultDataStackCells = 1024

// VMStack is the fixed-capacity data stack described in spec.md section 3:
// a contiguous buffer of 8-byte cells that grows downward, the top index
// decreasing on push. Booleans and pointers are stored as the bit pattern
// of a uint64; integers are signed 64-bit but manipulated bitwise.
type VMStack struct {
	buf []byte
	top int
}

func newVMStack(cells int) *VMStack {
	buf := make([]byte, cells*8)
	return &VMStack{buf: buf, top: len(buf)}
}

// Len reports the stack depth: (capacity - top) / 8, per spec.md section 3.
func (s *VMStack) Len() int { return (len(s.buf) - s.top) / 8 }

func (s *VMStack) Push(v uint64) error {
	if s.top < 8 {
		return trap(errStackOverflow)
	}
	s.top -= 8
	binary.LittleEndian.PutUint64(s.buf[s.top:s.top+8], v)
	return nil
}

func (s *VMStack) Pop() (uint64, error) {
	if s.top+8 > len(s.buf) {
		return 0, trap(errStackUnderflow)
	}
	v := binary.LittleEndian.Uint64(s.buf[s.top : s.top+8])
	s.top += 8
	return v, nil
}

// Peek returns the cell at depth (0 = top) without popping it.
func (s *VMStack) Peek(depth int) (uint64, error) {
	if depth < 0 {
		return 0, trap(errStackUnderflow)
	}
	off := s.top + depth*8
	if off+8 > len(s.buf) {
		return 0, trap(errStackUnderflow)
	}
	return binary.LittleEndian.Uint64(s.buf[off : off+8]), nil
}

// Cells returns the stack's contents bottom-to-top, for Debug dumps.
func (s *VMStack) Cells() []uint64 {
	n := s.Len()
	cells := make([]uint64, n)
	for i := 0; i < n; i++ {
		off := len(s.buf) - (i+1)*8
		cells[i] = binary.LittleEndian.Uint64(s.buf[off : off+8])
	}
	return cells
}

// VM executes a Bytecode program over a data stack, a return stack, and a
// linear memory arena. Every field below is set either by a default option
// or by one supplied to NewVM; there is no other way to mutate VM
// configuration once construction finishes.
type VM struct {
	bc     *Bytecode
	ip     int
	stack  *VMStack
	rstack []int
	mem    *Memory

	out    flushio.WriteFlusher
	logger *logio.Logger

	memLimit       uint
	dataStackCells int
	debugSymbols   bool

	closers []io.Closer
}

// NewVM constructs a VM ready to run bc, applying opts over the defaults.
func NewVM(bc *Bytecode, opts ...VMOption) (*VM, error) {
	vm := &VM{bc: bc, dataStackCells: defaultDataStackCells}
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)

	vm.stack = newVMStack(vm.dataStackCells)

	m, err := newMemory(bc, vm.memLimit)
	if err != nil {
		return nil, err
	}
	vm.mem = m

	return vm, nil
}

// Close releases any closer registered by an applied option (for example a
// WithOutput writer that also implements io.Closer).
func (vm *VM) Close() error {
	var first error
	for _, cl := range vm.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
