package main

import "fmt"

// compiler lowers a type-checked Operation tree into a flat Instruction
// stream, per spec.md section 4.4. It assumes the tree already passed
// TypeCheck: unknown words are reported defensively but should be
// unreachable in practice.
type compiler struct {
	instr   []Instruction
	fnDef   map[string]int
	fnSig   map[string]fnArity
	memDef  map[string]int
	memSize int
}

// fnArity is the part of a function's signature the compiler needs to size
// its calling convention: how many cells it consumes and produces.
type fnArity struct{ ins, outs int }

// Compile lowers ops into a complete Bytecode, appending a trailing Halt so
// the fetch-decode-execute loop always has an explicit terminator to land
// on, even though running off the end of the program has the same effect.
func Compile(ops []Operation) (*Bytecode, error) {
	c := &compiler{fnDef: map[string]int{}, fnSig: map[string]fnArity{}, memDef: map[string]int{}}
	if err := c.compileOps(ops); err != nil {
		return nil, err
	}
	c.emit(Instruction{Code: OpHalt})
	return &Bytecode{Program: c.instr, Entry: 0, ProgramMem: c.memSize}, nil
}

func (c *compiler) emit(ins Instruction) int {
	c.instr = append(c.instr, ins)
	return len(c.instr) - 1
}

func (c *compiler) compileOps(ops []Operation) error {
	for _, op := range ops {
		if err := c.compileOp(op); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileOp(op Operation) error {
	switch op.Kind {
	case OpPushI:
		c.emit(Instruction{Code: OpPushI32, IntArg: op.IntVal})

	case OpDebug:
		c.emit(Instruction{Code: OpDebug})

	case OpIntrinsic:
		code, ok := intrinsicOpCodes[op.Name]
		if !ok {
			return fmt.Errorf("compiler: unknown intrinsic %q", op.Name)
		}
		c.emit(Instruction{Code: code})

	case OpRead:
		c.emit(Instruction{Code: OpRead, Width: op.Width})

	case OpWrite:
		c.emit(Instruction{Code: OpWrite, Width: op.Width})

	case OpBind:
		c.emit(Instruction{Code: OpBind, Addr: op.BindIndex})

	case OpAlloc:
		c.memDef[op.Name] = c.memSize
		c.memSize += int(op.AllocSize)

	case OpWord:
		if addr, ok := c.fnDef[op.Name]; ok {
			c.emit(Instruction{Code: OpCall, Addr: addr})
			return nil
		}
		if offset, ok := c.memDef[op.Name]; ok {
			c.emit(Instruction{Code: OpPushPtr, Addr: offset})
			return nil
		}
		return fmt.Errorf("compiler: unknown word %q", op.Name)

	case OpIf:
		return c.compileIf(op)

	case OpIfElse:
		return c.compileIfElse(op)

	case OpWhile:
		return c.compileWhile(op)

	case OpFn:
		return c.compileFn(op)

	default:
		return fmt.Errorf("compiler: unhandled operation kind %v", op.Kind)
	}
	return nil
}

var intrinsicOpCodes = map[string]OpCode{
	"+": OpPlusI, "*": OpMultI, "mod": OpMod,
	"<": OpLt, "==": OpEqI, "!=": OpNEqI,
	"dup": OpDup, "drop": OpDrop, "swap": OpSwap, "over": OpOver, "rot": OpRot,
}

// compileFn emits a leading jump over the function's body so straight-line
// execution never falls into it, records the body's entry address, then
// compiles the body, a frame-cleanup step, and a Ret, and back-patches the
// leading jump.
//
// Bind(k) only ever copies (spec.md section 4.5), so a body that reads its
// parameters through `&` rather than consuming them leaves the original
// ins frame sitting under its result (see the worked "fn add" scenario:
// two Binds plus a `+` nets +1 cell where the signature demands -1). The
// calling convention resolves this the way a locals frame would: whatever
// the body computed beyond its declared outs, counting from the bottom of
// where ins started, is dropped right before Ret.
func (c *compiler) compileFn(op Operation) error {
	a := c.emit(Instruction{Code: OpJmp})
	insN, outsN := len(op.Ins), len(op.Outs)
	c.fnDef[op.Name] = a + 1
	c.fnSig[op.Name] = fnArity{ins: insN, outs: outsN}
	if err := c.compileOps(op.Body); err != nil {
		return err
	}
	if bodyLen := insN + c.stackEffect(op.Body); bodyLen > outsN {
		c.emit(Instruction{Code: OpFrameDrop, IntArg: int32(bodyLen - outsN), Width: outsN})
	}
	c.emit(Instruction{Code: OpRet})
	c.instr[a] = Instruction{Code: OpJmp, Rel: len(c.instr) - a}
	return nil
}

// stackEffect computes ops' net data-stack depth change, mirroring the type
// checker's per-kind arities exactly but tracking only counts, not types.
// It's used solely to size a function's frame-cleanup step; the type
// checker is what actually proves the program well-typed.
func (c *compiler) stackEffect(ops []Operation) int {
	n := 0
	for _, op := range ops {
		n += c.opEffect(op)
	}
	return n
}

func (c *compiler) opEffect(op Operation) int {
	switch op.Kind {
	case OpPushI, OpBind:
		return 1
	case OpIntrinsic:
		switch op.Name {
		case "+", "*", "mod", "<", "!=", "==", "drop":
			return -1
		case "dup", "over":
			return 1
		default: // swap, rot
			return 0
		}
	case OpRead:
		return 0
	case OpWrite:
		return -2
	case OpWord:
		if sig, ok := c.fnSig[op.Name]; ok {
			return sig.outs - sig.ins
		}
		return 1 // PushPtr for a memory allocation
	case OpIf:
		return -1 // the condition bool; the then-body itself nets zero
	case OpIfElse:
		return -1 + c.stackEffect(op.Then)
	case OpWhile:
		return c.stackEffect(op.Then)
	default: // OpDebug, OpAlloc
		return 0
	}
}

func (c *compiler) compileIf(op Operation) error {
	a := c.emit(Instruction{Code: OpJmpIf})
	if err := c.compileOps(op.Then); err != nil {
		return err
	}
	c.instr[a] = Instruction{Code: OpJmpIf, Rel: len(c.instr) - a}
	return nil
}

func (c *compiler) compileIfElse(op Operation) error {
	a := c.emit(Instruction{Code: OpJmpIf})
	if err := c.compileOps(op.Then); err != nil {
		return err
	}
	b := c.emit(Instruction{Code: OpJmp})
	c.instr[a] = Instruction{Code: OpJmpIf, Rel: b - a + 1}
	if err := c.compileOps(op.Else); err != nil {
		return err
	}
	c.instr[b] = Instruction{Code: OpJmp, Rel: len(c.instr) - b}
	return nil
}

func (c *compiler) compileWhile(op Operation) error {
	w := len(c.instr)
	if err := c.compileOps(op.Cond); err != nil {
		return err
	}
	i := c.emit(Instruction{Code: OpJmpIf})
	if err := c.compileOps(op.Then); err != nil {
		return err
	}
	c.emit(Instruction{Code: OpJmp, Rel: -(len(c.instr) - w)})
	c.instr[i] = Instruction{Code: OpJmpIf, Rel: len(c.instr) - i}
	return nil
}
