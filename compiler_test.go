package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *Bytecode {
	t.Helper()
	ops, err := NewParser([]byte(src), "test.chs").Parse()
	require.NoError(t, err)
	require.NoError(t, TypeCheck(ops))
	bc, err := Compile(ops)
	require.NoError(t, err)
	return bc
}

func TestCompileSimpleArith(t *testing.T) {
	bc := mustCompile(t, "1 2 + debug")
	codes := make([]OpCode, len(bc.Program))
	for i, ins := range bc.Program {
		codes[i] = ins.Code
	}
	assert.Equal(t, []OpCode{OpPushI32, OpPushI32, OpPlusI, OpDebug, OpHalt}, codes)
}

func TestCompileIfEmitsForwardJump(t *testing.T) {
	bc := mustCompile(t, "1 1 == if { 2 } debug")
	var jmpIf *Instruction
	for i := range bc.Program {
		if bc.Program[i].Code == OpJmpIf {
			jmpIf = &bc.Program[i]
		}
	}
	require.NotNil(t, jmpIf)
	assert.Greater(t, jmpIf.Rel, 0)
}

func TestCompileIfElseBothBranchesJump(t *testing.T) {
	bc := mustCompile(t, "1 1 != if { 100 } else { 200 } debug")
	var jmpIf, jmp *Instruction
	for i := range bc.Program {
		switch bc.Program[i].Code {
		case OpJmpIf:
			jmpIf = &bc.Program[i]
		case OpJmp:
			jmp = &bc.Program[i]
		}
	}
	require.NotNil(t, jmpIf)
	require.NotNil(t, jmp)
}

func TestCompileWhileBacksJumpNegative(t *testing.T) {
	bc := mustCompile(t, "0 while dup 3 != { dup 1 + } debug")
	var backJmp *Instruction
	for i := range bc.Program {
		if bc.Program[i].Code == OpJmp {
			backJmp = &bc.Program[i]
		}
	}
	require.NotNil(t, backJmp)
	assert.Less(t, backJmp.Rel, 0)
}

func TestCompileFnEmitsLeadingJmpAndRet(t *testing.T) {
	bc := mustCompile(t, "fn add a b : int int -> int { & 1 & 1 + } 3 4 add debug")
	require.NotEmpty(t, bc.Program)
	assert.Equal(t, OpJmp, bc.Program[0].Code)

	var sawRet bool
	for _, ins := range bc.Program {
		if ins.Code == OpRet {
			sawRet = true
		}
	}
	assert.True(t, sawRet)
	assert.Equal(t, OpHalt, bc.Program[len(bc.Program)-1].Code)
}

// TestCompileFnFrameDrop verifies that a Bind-only body that leaves residue
// above its declared outs gets an OpFrameDrop sized to drop exactly the
// leftover ins frame and keep the declared outs. See DESIGN.md's Fn/Bind
// calling-convention section.
func TestCompileFnFrameDrop(t *testing.T) {
	bc := mustCompile(t, "fn add a b : int int -> int { & 1 & 1 + } 3 4 add debug")
	var drop *Instruction
	for i := range bc.Program {
		if bc.Program[i].Code == OpFrameDrop {
			drop = &bc.Program[i]
		}
	}
	require.NotNil(t, drop)
	assert.Equal(t, int32(2), drop.IntArg) // drop a, b
	assert.Equal(t, 1, drop.Width)         // keep the sum
}

// TestCompileFnNoFrameDropWhenExact uses a body that consumes its
// parameter directly (no Bind), leaving exactly outs cells behind; no
// cleanup instruction should be emitted.
func TestCompileFnNoFrameDropWhenExact(t *testing.T) {
	bc := mustCompile(t, "fn inc a : int -> int { 1 + } 5 inc debug")
	for _, ins := range bc.Program {
		assert.NotEqual(t, OpFrameDrop, ins.Code)
	}
}

func TestCompileAllocAssignsIncreasingOffsets(t *testing.T) {
	bc := mustCompile(t, "alloc : 8 = a  alloc : 8 = b  a 64 @ drop b 64 @ drop")
	assert.Equal(t, 16, bc.ProgramMem)

	var offsets []int
	for _, ins := range bc.Program {
		if ins.Code == OpPushPtr {
			offsets = append(offsets, ins.Addr)
		}
	}
	assert.Equal(t, []int{0, 8}, offsets)
}

func TestCompileUnknownWordFails(t *testing.T) {
	_, err := Compile([]Operation{{Kind: OpWord, Name: "ghost"}})
	require.Error(t, err)
}
