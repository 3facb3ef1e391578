package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) []Operation {
	t.Helper()
	ops, err := NewParser([]byte(src), "test.chs").Parse()
	require.NoError(t, err)
	return ops
}

func TestTypeCheckOK(t *testing.T) {
	for _, src := range []string{
		"1 2 + debug",
		"1 2 3 rot debug",
		"fn add a b : int int -> int { & 1 & 1 + } 3 4 add debug",
		"alloc : 8 = buf  42 buf 64 ! buf 64 @ debug",
		"0 while dup 3 != { dup 1 + } debug",
		"1 1 != if { 100 } else { 200 } debug",
	} {
		t.Run(src, func(t *testing.T) {
			ops := mustParse(t, src)
			assert.NoError(t, TypeCheck(ops))
		})
	}
}

func TestTypeCheckTopLevelMayLeaveValues(t *testing.T) {
	ops := mustParse(t, "1 2 3")
	assert.NoError(t, TypeCheck(ops))
}

func TestTypeCheckIntrinsicTypeMismatch(t *testing.T) {
	ops := mustParse(t, "1 2 == +") // == leaves a Bool; + wants two Ints
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckStackUnderflow(t *testing.T) {
	ops := mustParse(t, "1 +")
	err := TypeCheck(ops)
	require.Error(t, err)
	var te typeError
	assert.ErrorAs(t, err, &te)
}

func TestTypeCheckUnknownWord(t *testing.T) {
	ops := mustParse(t, "nosuchword")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckIfMustPreserveShape(t *testing.T) {
	ops := mustParse(t, "1 1 == if { 1 }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckIfElseBranchesMustAgree(t *testing.T) {
	ops := mustParse(t, "1 1 == if { 1 } else { }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckWhileConditionMustLeaveBool(t *testing.T) {
	ops := mustParse(t, "0 while dup { dup 1 + }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckWhileConditionMustNotDisturbStack(t *testing.T) {
	ops := mustParse(t, "0 while drop 1 { }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckFnDuplicateDefinition(t *testing.T) {
	ops := mustParse(t, "fn f : -> { } fn f : -> { }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckFnWrongReturnType(t *testing.T) {
	ops := mustParse(t, "fn f : -> int { }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

// TestTypeCheckFnSuffixMatch exercises the Fn/Bind calling-convention
// resolution directly: a body that reads its params via Bind without
// consuming them leaves extra cells below its declared outs, and that's
// accepted as long as the suffix matches (see DESIGN.md).
func TestTypeCheckFnSuffixMatch(t *testing.T) {
	ops := mustParse(t, "fn add a b : int int -> int { & 1 & 1 + }")
	assert.NoError(t, TypeCheck(ops))
}

func TestTypeCheckFnInsufficientResult(t *testing.T) {
	ops := mustParse(t, "fn f a : int -> int bool { & 0 }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckBindDepthOutOfRange(t *testing.T) {
	ops := mustParse(t, "fn f a : int -> int { & 5 }")
	err := TypeCheck(ops)
	require.Error(t, err)
}

func TestTypeCheckReadWriteWidths(t *testing.T) {
	ops := mustParse(t, "alloc : 8 = buf  buf 8 @ drop  1 buf 16 !")
	assert.NoError(t, TypeCheck(ops))
}
