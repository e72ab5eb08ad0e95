package cinterp

import (
	"context"
	"sync"
)

// Snapshot is what the Debugger hands the controller at a breakpoint
// hit: the position that triggered it and a structurally independent
// copy of Memory at that instant.
type Snapshot struct {
	Pos    Position
	Memory *Memory
}

// gate is a resettable broadcast signal: "open" lets any number of
// waiters through, "closed" blocks all of them until reopened.
// Grounded on the original's threading.Event (can_run), reimplemented
// as a swapped-channel gate — the common Go idiom for a re-armable
// event, since sync.Cond has no non-blocking "is it open" signal a
// select can combine with ctx.Done().
type gate struct {
	mu sync.Mutex
	ch chan struct{}
}

func newGate() *gate {
	g := &gate{ch: make(chan struct{})}
	close(g.ch) // starts open
	return g
}

func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) closeGate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
		g.ch = make(chan struct{})
	default:
	}
}

func (g *gate) openGate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
	default:
		close(g.ch)
	}
}

// Debugger is the breakpoint/suspension protocol's state: a set of
// source positions, a bounded queue delivering snapshots to the
// controller, and the gate that suspends the evaluator thread.
// Grounded on §4.B/§5 of the expanded design and the original's
// CQueue + threading.Event pair (interpreter/interpreter.py).
type Debugger struct {
	breakpoints map[Position]bool
	queue       chan Snapshot
	gate        *gate
}

// NewDebugger creates a Debugger watching the given positions, with a
// snapshot queue bounded by queueCap (see Config key
// breakpoints.queue_cap).
func NewDebugger(breakpoints []Position, queueCap int) *Debugger {
	bp := make(map[Position]bool, len(breakpoints))
	for _, p := range breakpoints {
		bp[p] = true
	}
	return &Debugger{breakpoints: bp, queue: make(chan Snapshot, queueCap), gate: newGate()}
}

// Snapshots is the controller-facing channel of breakpoint hits.
func (d *Debugger) Snapshots() <-chan Snapshot { return d.queue }

// Resume reopens the gate, letting the evaluator proceed past the
// most recent breakpoint hit.
func (d *Debugger) Resume() { d.gate.openGate() }

// hit is called by the interpreter at every instrumented node. If pos
// is a registered breakpoint, it closes the gate and then publishes a
// snapshot before waiting for the gate to reopen, so a Resume issued
// after the snapshot is received always lands; otherwise it only waits,
// which is a no-op once the gate is open. A nil Debugger always
// no-ops, so interpreters run without one at full speed.
func (d *Debugger) hit(ctx context.Context, pos Position, mem *Memory) error {
	if d == nil {
		return nil
	}
	if d.breakpoints[pos] {
		d.gate.closeGate()
		d.queue <- Snapshot{Pos: pos, Memory: mem.Snapshot()}
	}
	return d.gate.wait(ctx)
}
