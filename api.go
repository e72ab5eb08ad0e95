package cinterp

import (
	"context"
	"io"
	"os"
)

// Diagnostics is defined in analyzer.go; Result is everything a caller
// gets back from a full run: the analyzer's warnings plus main's exit
// status, grounded on the original's top-level `run_program`
// (cinterp.py) folding lex+parse+analyze+evaluate into one call.
type Result struct {
	Diagnostics Diagnostics
	ExitStatus  int32
}

// Options configures a Run: where program output and scanf input come
// from, and the Config governing analysis/runtime behavior. A nil
// Config gets NewConfig()'s defaults.
type Options struct {
	Config *Config
	Stdin  io.Reader
	Stdout io.Writer
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Config == nil {
		out.Config = NewConfig()
	}
	if out.Stdin == nil {
		out.Stdin = os.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	return &out
}

// Run lexes, parses, analyzes, and evaluates src with no debugger
// attached, running to completion (or a first error) at full speed.
func Run(src string, opts *Options) (*Result, error) {
	return RunWithDebugger(context.Background(), src, nil, opts)
}

// RunWithDebugger is Run plus a Debugger a controller can use to halt
// execution at registered breakpoints. Evaluation happens on the
// calling goroutine; callers that want to keep reading
// Debugger.Snapshots() while the program runs should invoke this from
// its own goroutine. ctx is consulted only through the debugger's gate:
// canceling it unblocks any pending gate wait and aborts the
// interpreter with the context's error. Parsing and analysis do not
// consult ctx, and with a nil debugger it has no effect on the run.
func RunWithDebugger(ctx context.Context, src string, debugger *Debugger, opts *Options) (*Result, error) {
	opts = opts.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	tree, err := Parse(src)
	if err != nil {
		return nil, err
	}

	diags, err := Analyze(tree, opts.Config)
	if err != nil {
		return &Result{Diagnostics: diags}, err
	}
	if opts.Config.GetBool("analysis.warnings_fatal") && len(diags.Warnings) > 0 {
		first := diags.Warnings[0]
		return &Result{Diagnostics: diags}, &SemanticError{Pos: first.Pos, Message: first.Message}
	}

	interp := NewInterpreter(ctx, opts.Config, debugger, opts.Stdin, opts.Stdout)
	status, err := interp.Run(tree)
	return &Result{Diagnostics: diags, ExitStatus: status}, err
}

// NewDebuggerFromConfig builds a Debugger whose snapshot queue is
// sized from cfg's breakpoints.queue_cap, so a caller configuring one
// Config for both analysis and debugging doesn't also have to thread
// the queue depth through separately.
func NewDebuggerFromConfig(breakpoints []Position, cfg *Config) *Debugger {
	if cfg == nil {
		cfg = NewConfig()
	}
	return NewDebugger(breakpoints, cfg.GetInt("breakpoints.queue_cap"))
}
