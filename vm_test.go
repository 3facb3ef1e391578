package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProgram drives a source string through the whole pipeline
// (lex/parse -> type check -> compile -> run), the same sequence of
// public entry points main.go uses, and returns everything Debug wrote
// to stdout.
func runProgram(t *testing.T, src string) (string, error) {
	t.Helper()
	ops, err := NewParser([]byte(src), "test.chs").Parse()
	require.NoError(t, err)
	require.NoError(t, TypeCheck(ops))
	bc, err := Compile(ops)
	require.NoError(t, err)

	var out bytes.Buffer
	vm, err := NewVM(bc, WithOutput(&out))
	require.NoError(t, err)
	defer vm.Close()

	runErr := vm.Run()
	return out.String(), runErr
}

// TestEndToEndScenarios encodes spec.md section 8's six worked scenarios.
// The rot case expects Debug's bottom-to-top order, and the fn case relies
// on the Fn/Bind frame-cleanup calling convention (see DESIGN.md for both).
func TestEndToEndScenarios(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want string
	}{
		{"add then debug", "1 2 + debug", "[ 3 ]\n"},
		{"rot then debug", "1 2 3 rot debug", "[ 2 3 1 ]\n"},
		{"fn add with bind", "fn add a b : int int -> int { & 1 & 1 + } 3 4 add debug", "[ 7 ]\n"},
		{"alloc write read", "alloc : 8 = buf  42 buf 64 ! buf 64 @ debug", "[ 42 ]\n"},
		{"while loop accumulates", "0 while dup 3 != { dup 1 + } debug", "[ 0 1 2 3 ]\n"},
		{"if else takes else branch", "1 1 != if { 100 } else { 200 } debug", "[ 200 ]\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runProgram(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVMStackPushPop(t *testing.T) {
	s := newVMStack(4)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	assert.Equal(t, 2, s.Len())
	v, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
	assert.Equal(t, 1, s.Len())
}

func TestVMStackOverflow(t *testing.T) {
	s := newVMStack(1)
	require.NoError(t, s.Push(1))
	err := s.Push(2)
	require.Error(t, err)
}

func TestVMStackUnderflow(t *testing.T) {
	s := newVMStack(1)
	_, err := s.Pop()
	require.Error(t, err)
}

func TestVMStackPeek(t *testing.T) {
	s := newVMStack(4)
	require.NoError(t, s.Push(10))
	require.NoError(t, s.Push(20))
	v, err := s.Peek(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), v)
	v, err = s.Peek(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}

func TestVMDivByZeroTraps(t *testing.T) {
	_, err := runProgram(t, "1 0 mod debug")
	require.Error(t, err)
	var te trapError
	assert.ErrorAs(t, err, &te)
}

func TestVMReadOutOfBoundsTraps(t *testing.T) {
	_, err := runProgram(t, "alloc : 4 = buf  buf 64 @ drop")
	require.Error(t, err)
}

func TestVMDataStackSizeOption(t *testing.T) {
	ops, err := NewParser([]byte("1 2 + debug"), "t").Parse()
	require.NoError(t, err)
	require.NoError(t, TypeCheck(ops))
	bc, err := Compile(ops)
	require.NoError(t, err)

	var out bytes.Buffer
	vm, err := NewVM(bc, WithOutput(&out), WithDataStackSize(2))
	require.NoError(t, err)
	defer vm.Close()
	require.NoError(t, vm.Run())
	assert.Equal(t, "[ 3 ]\n", out.String())
}

func TestVMMemLimitTrapsOnOversizedAlloc(t *testing.T) {
	ops, err := NewParser([]byte("alloc : 4096 = big  1 drop"), "t").Parse()
	require.NoError(t, err)
	require.NoError(t, TypeCheck(ops))
	bc, err := Compile(ops)
	require.NoError(t, err)

	_, err = NewVM(bc, WithMemLimit(16))
	require.Error(t, err)
}

func TestDiagnosticFormat(t *testing.T) {
	_, err := NewParser([]byte("fn f a : weird -> int { }"), "prog.chs").Parse()
	require.Error(t, err)
	msg := diagnostic("prog.chs", err)
	assert.Contains(t, msg, "Error:\n  ")
	assert.Contains(t, msg, "prog.chs:")
}
