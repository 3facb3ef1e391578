/* Package main: chs -- a stack-oriented concatenative language toolchain

chs reads a single source file, runs it through the lexer, parser, type
checker, and compiler, and executes the resulting bytecode on a stack
machine. See doc.go for the pipeline's stage-by-stage layout.

Usage:

	chs <filepath>

Exit code is 0 on success, nonzero on any parse, type, or runtime error.
Diagnostics go to standard error; program output (Debug dumps) goes to
standard output.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/MarcosAndradeV/chs/internal/fileinput"
	"github.com/MarcosAndradeV/chs/internal/logio"
	"github.com/MarcosAndradeV/chs/internal/panicerr"
)

func main() {
	var (
		memLimit  uint
		dataStack int
		trace     bool
		dump      bool
	)
	flag.UintVar(&memLimit, "mem-limit", 0, "cap the memory arena's growth in bytes (0 = unbounded)")
	flag.IntVar(&dataStack, "data-stack-cells", 0, "override the data stack's cell capacity (0 = default 1024)")
	flag.BoolVar(&trace, "trace", false, "log each parse/compile/exec step")
	flag.BoolVar(&dump, "dump", false, "print a full VM state dump on exit")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	if flag.NArg() != 1 {
		log.Errorf("usage: chs <filepath>")
		return
	}
	filepath := flag.Arg(0)

	src, err := fileinput.ReadFile(filepath)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	trace2 := log.Leveledf("TRACE")
	if trace {
		trace2("parsing %s", filepath)
	}

	ops, err := runPipeline(src, filepath, trace2, trace)
	if err != nil {
		log.Errorf("%s", diagnostic(filepath, err))
		return
	}

	vm, err := newPipelineVM(ops, memLimit, dataStack, dump, &log)
	if err != nil {
		log.Errorf("%s", diagnostic(filepath, err))
		return
	}
	defer vm.Close()
	if trace {
		trace2("compiled %d instruction(s)", len(vm.bc.Program))
	}

	if dump {
		defer vmDumper{vm: vm, out: os.Stderr}.dump()
	}

	if trace {
		trace2("running")
	}
	if err := vm.Run(); err != nil {
		log.Errorf("%s", diagnostic(filepath, err))
	}
}

// runPipeline drives the parser and type checker; it's split out of main so
// the panic-recovery boundary in the VM's Run doesn't also have to cover
// compile-time stages, which never panic by construction.
func runPipeline(src fileinput.Source, filepath string, tracef func(string, ...interface{}), trace bool) ([]Operation, error) {
	p := NewParser(src.Data, filepath)
	ops, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if trace {
		tracef("parsed %d top-level operation(s)", len(ops))
	}
	if err := TypeCheck(ops); err != nil {
		return nil, err
	}
	if trace {
		tracef("type check passed")
	}
	return ops, nil
}

func newPipelineVM(ops []Operation, memLimit uint, dataStack int, dump bool, log *logio.Logger) (*VM, error) {
	bc, err := Compile(ops)
	if err != nil {
		return nil, err
	}

	opts := []VMOption{
		WithOutput(os.Stdout),
		WithLogger(log),
		WithMemLimit(memLimit),
		WithDebugSymbols(dump),
	}
	if dataStack > 0 {
		opts = append(opts, WithDataStackSize(dataStack))
	}

	return newVMRecovered(bc, opts...)
}

// newVMRecovered wraps NewVM in the same panic-isolating recovery the VM's
// own Run uses, since arena construction can in principle panic on an
// absurd memLimit before any instruction ever executes.
func newVMRecovered(bc *Bytecode, opts ...VMOption) (vm *VM, err error) {
	rerr := panicerr.Recover("VM construction", func() error {
		var cerr error
		vm, cerr = NewVM(bc, opts...)
		return cerr
	})
	if rerr != nil {
		return nil, fmt.Errorf("%w", rerr)
	}
	return vm, nil
}
