package main

import "github.com/MarcosAndradeV/chs/internal/panicerr"

// Run executes the VM's bytecode to completion, recovering any unexpected
// panic into a normal error the same way the teacher's top-level Run does.
func (vm *VM) Run() error {
	return panicerr.Recover("VM", func() error {
		return vm.run()
	})
}

// run is the fetch-decode-execute loop of spec.md section 4.5: ip starts at
// the program's entry, each iteration computes next = ip+1 and lets the
// instruction override it, and the loop exits when ip runs off the end of
// the program.
func (vm *VM) run() error {
	defer vm.out.Flush()

	vm.ip = vm.bc.Entry
	for vm.ip < len(vm.bc.Program) {
		ins := vm.bc.Program[vm.ip]
		next := vm.ip + 1

		switch ins.Code {
		case OpHalt:
			next = len(vm.bc.Program)

		case OpPushI32:
			if err := vm.stack.Push(uint64(int64(ins.IntArg))); err != nil {
				return err
			}

		case OpPushPtr:
			if err := vm.stack.Push(uint64(ins.Addr)); err != nil {
				return err
			}

		case OpDrop:
			if _, err := vm.stack.Pop(); err != nil {
				return err
			}

		case OpDup:
			a, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			if err := vm.stack.Push(a); err != nil {
				return err
			}
			if err := vm.stack.Push(a); err != nil {
				return err
			}

		case OpSwap:
			b, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			a, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			if err := vm.stack.Push(b); err != nil {
				return err
			}
			if err := vm.stack.Push(a); err != nil {
				return err
			}

		case OpOver:
			b, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			a, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			if err := vm.stack.Push(a); err != nil {
				return err
			}
			if err := vm.stack.Push(b); err != nil {
				return err
			}
			if err := vm.stack.Push(a); err != nil {
				return err
			}

		case OpRot:
			c, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			b, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			a, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			if err := vm.stack.Push(b); err != nil {
				return err
			}
			if err := vm.stack.Push(c); err != nil {
				return err
			}
			if err := vm.stack.Push(a); err != nil {
				return err
			}

		case OpPlusI, OpMultI, OpMod, OpOffset:
			b, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			a, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			ai, bi := int64(a), int64(b)
			var r int64
			switch ins.Code {
			case OpPlusI, OpOffset:
				r = ai + bi
			case OpMultI:
				r = ai * bi
			case OpMod:
				if bi == 0 {
					return trap(errDivByZero)
				}
				r = ai % bi
			}
			if err := vm.stack.Push(uint64(r)); err != nil {
				return err
			}

		case OpLt, OpEqI, OpNEqI:
			b, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			a, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			ai, bi := int64(a), int64(b)
			var cond bool
			switch ins.Code {
			case OpLt:
				cond = ai < bi
			case OpEqI:
				cond = ai == bi
			case OpNEqI:
				cond = ai != bi
			}
			var v uint64
			if cond {
				v = 1
			}
			if err := vm.stack.Push(v); err != nil {
				return err
			}

		case OpBind:
			v, err := vm.stack.Peek(ins.Addr)
			if err != nil {
				return err
			}
			if err := vm.stack.Push(v); err != nil {
				return err
			}

		case OpJmp:
			next = vm.ip + ins.Rel

		case OpJmpIf:
			t, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			if t == 0 {
				next = vm.ip + ins.Rel
			}

		case OpCall:
			vm.rstack = append(vm.rstack, next)
			next = ins.Addr

		case OpRet:
			if len(vm.rstack) == 0 {
				next = len(vm.bc.Program)
				break
			}
			next = vm.rstack[len(vm.rstack)-1]
			vm.rstack = vm.rstack[:len(vm.rstack)-1]

		case OpRead:
			ptr, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			v, err := vm.mem.Read(int(ptr), ins.Width)
			if err != nil {
				return err
			}
			if err := vm.stack.Push(v); err != nil {
				return err
			}

		case OpWrite:
			ptr, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			val, err := vm.stack.Pop()
			if err != nil {
				return err
			}
			if err := vm.mem.Write(int(ptr), ins.Width, val); err != nil {
				return err
			}

		// OpFrameDrop implements a function's calling convention: keep the
		// top Width cells (the computed outs) and discard the IntArg cells
		// beneath them (whatever's left of the ins frame a Bind-heavy body
		// never popped on its own).
		case OpFrameDrop:
			keep := ins.Width
			tmp := make([]uint64, keep)
			for i := keep - 1; i >= 0; i-- {
				v, err := vm.stack.Pop()
				if err != nil {
					return err
				}
				tmp[i] = v
			}
			for i := 0; i < int(ins.IntArg); i++ {
				if _, err := vm.stack.Pop(); err != nil {
					return err
				}
			}
			for _, v := range tmp {
				if err := vm.stack.Push(v); err != nil {
					return err
				}
			}

		case OpDebug:
			vm.dumpDebug()

		default:
			return trap(errUnknownOpcode)
		}

		if next < 0 || next > len(vm.bc.Program) {
			return trap(errJumpOutOfBounds)
		}
		vm.ip = next
	}
	return nil
}
