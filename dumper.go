package main

import (
	"fmt"
	"io"

	"github.com/MarcosAndradeV/chs/internal/runeio"
)

// dumpDebug implements the Debug instruction (spec.md section 4, "Debug —
// emit a human-readable dump of the data stack to standard output"), in
// construction order (bottom first), matching both original_source Debug
// implementations (println! on a Vec that is only ever appended to).
func (vm *VM) dumpDebug() {
	cells := vm.stack.Cells()
	io.WriteString(vm.out, "[")
	for _, c := range cells {
		fmt.Fprintf(vm.out, " %d", int64(c))
	}
	io.WriteString(vm.out, " ]\n")
}

// vmDumper renders a full VM state dump for the CLI's -dump flag: the data
// stack, the return stack, and a compact summary of the memory arena. It's a
// richer, multi-line cousin of dumpDebug, meant for a human debugging a trap
// rather than for a program's own Debug instruction.
type vmDumper struct {
	vm  *VM
	out io.Writer
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  ip: %v\n", dump.vm.ip)
	dump.dumpStack()
	dump.dumpReturnStack()
	dump.dumpMem()
}

func (dump vmDumper) dumpStack() {
	cells := dump.vm.stack.Cells()
	fmt.Fprintf(dump.out, "  stack:")
	for _, c := range cells {
		fmt.Fprintf(dump.out, " %d", int64(c))
	}
	io.WriteString(dump.out, "\n")
}

func (dump vmDumper) dumpReturnStack() {
	fmt.Fprintf(dump.out, "  rstack: %v\n", dump.vm.rstack)
}

// dumpMem renders the arena a byte at a time, using runeio's ANSI-safe rune
// writer so a stray control byte in memory can't corrupt the dump's
// terminal; runs of zero bytes are collapsed the way the teacher collapses
// unset memory cells to nothing.
func (dump vmDumper) dumpMem() {
	size := dump.vm.mem.Size()
	fmt.Fprintf(dump.out, "  mem: %d bytes\n", size)

	const width = 16
	for base := 0; base < size; base += width {
		end := base + width
		if end > size {
			end = size
		}
		row := make([]byte, end-base)
		for i := range row {
			v, err := dump.vm.mem.Read(base+i, 8)
			if err != nil {
				return
			}
			row[i] = byte(v)
		}
		allZero := true
		for _, b := range row {
			if b != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			continue
		}
		fmt.Fprintf(dump.out, "  @%-6d ", base)
		for _, b := range row {
			if b >= 0x20 && b < 0x7f {
				runeio.WriteANSIRune(dump.out, rune(b))
			} else {
				fmt.Fprintf(dump.out, "\\x%02x", b)
			}
		}
		io.WriteString(dump.out, "\n")
	}
}
