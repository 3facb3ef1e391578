package main

import "fmt"

// OpCode is one VM instruction's discriminator. Kept as a dense enum rather
// than an interface hierarchy: the VM's decode loop switches on it directly,
// the same flattened-struct-with-tag shape as Operation in ast.go.
type OpCode int

const (
	OpHalt OpCode = iota
	OpPushI32
	OpPushPtr
	OpDrop
	OpDup
	OpSwap
	OpOver
	OpRot
	OpPlusI
	OpMultI
	OpMod
	OpLt
	OpEqI
	OpNEqI
	OpOffset
	OpJmp
	OpJmpIf
	OpCall
	OpRet
	OpBind
	OpRead
	OpWrite
	OpDebug
	OpFrameDrop
)

func (c OpCode) String() string {
	switch c {
	case OpHalt:
		return "Halt"
	case OpPushI32:
		return "PushI32"
	case OpPushPtr:
		return "PushPtr"
	case OpDrop:
		return "Drop"
	case OpDup:
		return "Dup"
	case OpSwap:
		return "Swap"
	case OpOver:
		return "Over"
	case OpRot:
		return "Rot"
	case OpPlusI:
		return "PlusI"
	case OpMultI:
		return "MultI"
	case OpMod:
		return "Mod"
	case OpLt:
		return "Lt"
	case OpEqI:
		return "EqI"
	case OpNEqI:
		return "NEqI"
	case OpOffset:
		return "Offset"
	case OpJmp:
		return "Jmp"
	case OpJmpIf:
		return "JmpIf"
	case OpCall:
		return "Call"
	case OpRet:
		return "Ret"
	case OpBind:
		return "Bind"
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	case OpDebug:
		return "Debug"
	case OpFrameDrop:
		return "FrameDrop"
	default:
		return "?"
	}
}

// Instruction is one bytecode word. Only the fields relevant to Code are
// meaningful; the rest are zero. IntArg carries PushI32's literal, and
// FrameDrop's drop count; Addr carries PushPtr's static offset, Call's
// target address, and Bind's binding depth; Rel carries Jmp/JmpIf's
// relative offset (signed, computed from the jump instruction's own
// position); Width carries Read/Write's bit width, and FrameDrop's keep
// count.
type Instruction struct {
	Code   OpCode
	IntArg int32
	Addr   int
	Rel    int
	Width  int
}

func (ins Instruction) String() string {
	switch ins.Code {
	case OpPushI32:
		return fmt.Sprintf("PushI32(%d)", ins.IntArg)
	case OpPushPtr:
		return fmt.Sprintf("PushPtr(%d)", ins.Addr)
	case OpJmp:
		return fmt.Sprintf("Jmp(%+d)", ins.Rel)
	case OpJmpIf:
		return fmt.Sprintf("JmpIf(%+d)", ins.Rel)
	case OpCall:
		return fmt.Sprintf("Call(%d)", ins.Addr)
	case OpBind:
		return fmt.Sprintf("Bind(%d)", ins.Addr)
	case OpRead:
		return fmt.Sprintf("Read(%d)", ins.Width)
	case OpWrite:
		return fmt.Sprintf("Write(%d)", ins.Width)
	case OpFrameDrop:
		return fmt.Sprintf("FrameDrop(drop=%d, keep=%d)", ins.IntArg, ins.Width)
	default:
		return ins.Code.String()
	}
}

// Bytecode is the compiler's complete output: a flat instruction stream,
// its entry point, the total size of the program's static allocations, and
// a slot for string-literal bytes. Strs is always empty in this build:
// the lexer has no string-literal rule (see the "String literals" Open
// Question resolution), so nothing ever populates it, but the field is
// kept so the type mirrors spec.md's wire shape.
type Bytecode struct {
	Program    []Instruction
	Entry      int
	ProgramMem int
	Strs       [][]byte
}
