package main

// fnSig is a registered function's input/output stack effect.
type fnSig struct {
	ins  []DataType
	outs []DataType
}

// typeChecker is the abstract interpreter described in spec.md section 4.3:
// it never touches real data, only the shapes of values flowing across the
// stack. fnDefs and memDefs are shared across every nested check of a
// function body, since function names and allocation names are each global
// to the whole program.
type typeChecker struct {
	stack   []DataType
	fnDefs  map[string]fnSig
	memDefs map[string]bool
}

// TypeCheck runs the checker over a whole program's top-level Operations.
// Top-level code is free-form and may leave values on the stack (spec.md's
// end-to-end scenarios all do); only function bodies are held to their
// declared ins/outs contract.
func TypeCheck(ops []Operation) error {
	c := &typeChecker{fnDefs: map[string]fnSig{}, memDefs: map[string]bool{}}
	return c.checkOps(ops)
}

func (c *typeChecker) checkOps(ops []Operation) error {
	for _, op := range ops {
		if err := c.checkOp(op); err != nil {
			return err
		}
	}
	return nil
}

func (c *typeChecker) checkOp(op Operation) error {
	switch op.Kind {
	case OpPushI:
		c.push(Int)
		return nil

	case OpDebug:
		return nil

	case OpIntrinsic:
		return c.checkIntrinsic(op)

	case OpRead:
		if err := c.pop(op, Ptr); err != nil {
			return err
		}
		c.push(Int)
		return nil

	case OpWrite:
		if err := c.pop(op, Ptr); err != nil {
			return err
		}
		if err := c.pop(op, Int); err != nil {
			return err
		}
		return nil

	case OpBind:
		depth := len(c.stack) - 1 - op.BindIndex
		if depth < 0 {
			return newTypeError("Bind", op.Loc, "binding depth %d exceeds stack depth %d", op.BindIndex, len(c.stack))
		}
		c.push(c.stack[depth])
		return nil

	case OpAlloc:
		c.memDefs[op.Name] = true
		return nil

	case OpWord:
		return c.checkWord(op)

	case OpIf:
		return c.checkIf(op)

	case OpIfElse:
		return c.checkIfElse(op)

	case OpWhile:
		return c.checkWhile(op)

	case OpFn:
		return c.checkFn(op)

	default:
		return newTypeError(op.Kind.String(), op.Loc, "unhandled operation kind")
	}
}

func (c *typeChecker) checkIntrinsic(op Operation) error {
	switch op.Name {
	case "+", "*", "mod":
		if err := c.popN(op, Int, Int); err != nil {
			return err
		}
		c.push(Int)
	case "<", "!=", "==":
		if err := c.popN(op, Int, Int); err != nil {
			return err
		}
		c.push(Bool)
	case "dup":
		if err := c.requireDepth(op, 1); err != nil {
			return err
		}
		c.push(c.stack[len(c.stack)-1])
	case "drop":
		if err := c.requireDepth(op, 1); err != nil {
			return err
		}
		c.stack = c.stack[:len(c.stack)-1]
	case "swap":
		if err := c.requireDepth(op, 2); err != nil {
			return err
		}
		n := len(c.stack)
		c.stack[n-1], c.stack[n-2] = c.stack[n-2], c.stack[n-1]
	case "over":
		if err := c.requireDepth(op, 2); err != nil {
			return err
		}
		c.push(c.stack[len(c.stack)-2])
	case "rot":
		if err := c.requireDepth(op, 3); err != nil {
			return err
		}
		n := len(c.stack)
		a, b, cc := c.stack[n-3], c.stack[n-2], c.stack[n-1]
		c.stack[n-3], c.stack[n-2], c.stack[n-1] = b, cc, a
	default:
		return newTypeError("Intrinsic", op.Loc, "unknown intrinsic %q", op.Name)
	}
	return nil
}

func (c *typeChecker) checkWord(op Operation) error {
	if sig, ok := c.fnDefs[op.Name]; ok {
		n := len(sig.ins)
		if len(c.stack) < n {
			return newTypeError("Word", op.Loc, "call to %q needs %d argument(s), stack has %d", op.Name, n, len(c.stack))
		}
		top := c.stack[len(c.stack)-n:]
		for i, want := range sig.ins {
			if top[i] != want {
				return newTypeError("Word", op.Loc, "call to %q expects %v at argument %d, got %v", op.Name, want, i, top[i])
			}
		}
		c.stack = c.stack[:len(c.stack)-n]
		c.stack = append(c.stack, sig.outs...)
		return nil
	}
	if c.memDefs[op.Name] {
		c.push(Ptr)
		return nil
	}
	return newTypeError("Word", op.Loc, "unknown word %q", op.Name)
}

func (c *typeChecker) checkIf(op Operation) error {
	if err := c.pop(op, Bool); err != nil {
		return err
	}
	before := c.snapshot()
	if err := c.checkOps(op.Then); err != nil {
		return err
	}
	if !sameShape(before, c.stack) {
		return newTypeError("If", op.Loc, "then-body must leave the stack unchanged, had %v now %v", before, c.stack)
	}
	return nil
}

func (c *typeChecker) checkIfElse(op Operation) error {
	if err := c.pop(op, Bool); err != nil {
		return err
	}
	before := c.snapshot()

	c.stack = c.snapshot()
	if err := c.checkOps(op.Then); err != nil {
		return err
	}
	thenResult := c.snapshot()

	c.stack = append([]DataType(nil), before...)
	if err := c.checkOps(op.Else); err != nil {
		return err
	}
	elseResult := c.snapshot()

	if !sameShape(thenResult, elseResult) {
		return newTypeError("IfElse", op.Loc, "then-branch (%v) and else-branch (%v) must leave identical stacks", thenResult, elseResult)
	}
	c.stack = thenResult
	return nil
}

func (c *typeChecker) checkWhile(op Operation) error {
	before := c.snapshot()
	if err := c.checkOps(op.Cond); err != nil {
		return err
	}
	if len(c.stack) != len(before)+1 {
		return newTypeError("While", op.Loc, "condition must leave exactly one extra value on the stack")
	}
	if c.stack[len(c.stack)-1] != Bool {
		return newTypeError("While", op.Loc, "condition must leave a bool on top of the stack")
	}
	if !sameShape(before, c.stack[:len(c.stack)-1]) {
		return newTypeError("While", op.Loc, "condition must not otherwise disturb the stack")
	}
	c.stack = c.stack[:len(c.stack)-1]

	// The body is free to grow the stack (an accumulating loop is a normal
	// idiom here); only the condition's own shape is load-bearing, since
	// that's what's re-evaluated every iteration.
	return c.checkOps(op.Then)
}

func (c *typeChecker) checkFn(op Operation) error {
	if _, dup := c.fnDefs[op.Name]; dup {
		return newTypeError("Fn", op.Loc, "function %q is already defined", op.Name)
	}
	c.fnDefs[op.Name] = fnSig{ins: op.Ins, outs: op.Outs}

	body := &typeChecker{
		stack:   append([]DataType(nil), op.Ins...),
		fnDefs:  c.fnDefs,
		memDefs: c.memDefs,
	}
	if err := body.checkOps(op.Body); err != nil {
		return err
	}

	// A body that only reads its parameters through Bind (a non-destructive
	// copy, per spec.md section 4.5) never pops the ins frame itself, so
	// body.stack may run deeper than op.Outs; the compiler's calling
	// convention drops that leftover right before Ret (see compileFn). Only
	// the top len(Outs) cells are the function's actual result.
	n := len(op.Outs)
	if len(body.stack) < n {
		return newTypeError("Fn", op.Loc, "function %q must return %v, stack only has %v", op.Name, op.Outs, body.stack)
	}
	result := body.stack[len(body.stack)-n:]
	if !sameShape(op.Outs, result) {
		return newTypeError("Fn", op.Loc, "function %q must return %v, got %v", op.Name, op.Outs, result)
	}
	return nil
}

func (c *typeChecker) push(dt DataType) { c.stack = append(c.stack, dt) }

func (c *typeChecker) requireDepth(op Operation, n int) error {
	if len(c.stack) < n {
		return newTypeError(op.Kind.String(), op.Loc, "requires %d value(s), stack has %d", n, len(c.stack))
	}
	return nil
}

func (c *typeChecker) pop(op Operation, want DataType) error {
	if len(c.stack) < 1 {
		return newTypeError(op.Kind.String(), op.Loc, "requires a %v, stack is empty", want)
	}
	got := c.stack[len(c.stack)-1]
	if got != want {
		return newTypeError(op.Kind.String(), op.Loc, "expects %v on top of the stack, got %v", want, got)
	}
	c.stack = c.stack[:len(c.stack)-1]
	return nil
}

// popN pops two operands, rightmost first, both required to have type want.
func (c *typeChecker) popN(op Operation, want, want2 DataType) error {
	if err := c.pop(op, want); err != nil {
		return err
	}
	return c.pop(op, want2)
}

func (c *typeChecker) snapshot() []DataType { return append([]DataType(nil), c.stack...) }

func sameShape(a, b []DataType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
