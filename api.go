package main

import (
	"io"

	"github.com/MarcosAndradeV/chs/internal/logio"
)

// WithOutput directs the VM's Debug-instruction output to w.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithLogger stores log on the VM. The VM's own execution does not write to
// it: runtime traps are returned as errors from Run.
func WithLogger(log *logio.Logger) VMOption { return withLogger(log) }

// WithMemLimit caps the linear memory arena's growth at limit bytes; zero
// means unbounded, matching mem.Arena's own zero-value behavior.
func WithMemLimit(limit uint) VMOption { return withMemLimit(limit) }

// WithDataStackSize overrides the data stack's cell capacity, which
// defaults to 1024 per spec.md section 3.
func WithDataStackSize(cells int) VMOption { return withDataStackSize(cells) }

// WithDebugSymbols records whether the CLI's -dump flag is set. Neither the
// Debug instruction's stack dump nor the -dump output depends on it.
func WithDebugSymbols(enabled bool) VMOption { return withDebugSymbols(enabled) }
