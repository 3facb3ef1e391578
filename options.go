package main

import (
	"io"

	"github.com/MarcosAndradeV/chs/internal/flushio"
	"github.com/MarcosAndradeV/chs/internal/logio"
)

// VMOption configures a VM at construction time. The combinator plumbing
// below (options/noption/VMOptions) is the teacher's chainable-apply
// pattern, carried over unchanged since it's option-shape-agnostic.
type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withOutput(io.Discard),
)

// VMOptions flattens any mix of options (including nested option lists and
// nils from a conditionally-built call site) into a single VMOption.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(vm *VM) {}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

type outputOption struct{ io.Writer }

func withOutput(w io.Writer) outputOption { return outputOption{w} }

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

type loggerOption struct{ log *logio.Logger }

func withLogger(log *logio.Logger) loggerOption { return loggerOption{log} }

func (o loggerOption) apply(vm *VM) { vm.logger = o.log }

type memLimitOption uint

func withMemLimit(limit uint) memLimitOption { return memLimitOption(limit) }

func (lim memLimitOption) apply(vm *VM) { vm.memLimit = uint(lim) }

type dataStackSizeOption int

func withDataStackSize(cells int) dataStackSizeOption { return dataStackSizeOption(cells) }

func (n dataStackSizeOption) apply(vm *VM) {
	if n > 0 {
		vm.dataStackCells = int(n)
	}
}

type debugSymbolsOption bool

func withDebugSymbols(enabled bool) debugSymbolsOption { return debugSymbolsOption(enabled) }

func (b debugSymbolsOption) apply(vm *VM) { vm.debugSymbols = bool(b) }
