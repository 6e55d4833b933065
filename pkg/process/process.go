// Package process implements Neutron's Erlang-style lightweight process
// system (spec §4.7): a PID table, per-process mailboxes, one goroutine
// per spawned process, and a per-process reduction counter field.
//
// Grounded on original_source/include/runtime/process.h: the same
// ProcessState enum, Message{sender,data,timestamp} shape, and
// DEFAULT_REDUCTIONS constant, translated from C++
// std::thread/std::condition_variable to Go goroutines and channels:
// Spawn starts one goroutine per process rather than feeding a pool.
package process

import (
	"sync"
	"time"

	"github.com/yasakei/neutron/pkg/value"
)

// PID identifies a process. 0 is never assigned; it signals "no process".
type PID uint64

// State mirrors the original's ProcessState enum.
type State int

const (
	StateReady State = iota
	StateRunning
	StateWaiting
	StateFinished
	StateDead
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateFinished:
		return "finished"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Message is one mailbox entry. Timestamp is a monotonic sequence number
// (not wall-clock time, so the scheduler never calls time.Now() on the
// hot path), kept so FIFO ordering survives a future priority-queue
// rework without a redesign.
type Message struct {
	Sender    PID
	Data      value.Value
	Timestamp uint64
}

// DefaultReductions is the per-scheduling-slice work quota, carried over
// verbatim from the original's DEFAULT_REDUCTIONS.
const DefaultReductions = 2000

// process is one lightweight process's bookkeeping. The Go call that runs
// its function body executes to completion on its own goroutine rather
// than being interrupted mid-instruction at a reduction boundary — spec
// §4.7 leaves the exact preemption granularity to the implementation, and
// the VM's dispatch loop has no hook for yielding control mid-function
// without major surgery, so ReductionsLeft is set at spawn and never
// decremented or read; it is not an enforced preemption point.
type process struct {
	pid PID

	mu      sync.Mutex
	state   State
	mailbox []Message
	seq     uint64
	notify  chan struct{}

	ReductionsLeft int64

	result value.Value
	err    error
	done   chan struct{}
}

func newProcess(pid PID) *process {
	return &process{
		pid:            pid,
		state:          StateReady,
		notify:         make(chan struct{}, 1),
		ReductionsLeft: DefaultReductions,
		done:           make(chan struct{}),
	}
}

func (p *process) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *process) enqueue(msg Message) {
	p.mu.Lock()
	msg.Timestamp = p.seq
	p.seq++
	p.mailbox = append(p.mailbox, msg)
	p.mu.Unlock()
	p.wake()
}

func (p *process) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.wake()
}

func (p *process) getState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// dequeue pops the oldest message, blocking up to timeout (0 = forever)
// until one arrives, the process is killed, or the timeout elapses.
func (p *process) dequeue(timeout time.Duration) (Message, bool) {
	for {
		p.mu.Lock()
		if len(p.mailbox) > 0 {
			msg := p.mailbox[0]
			p.mailbox = p.mailbox[1:]
			p.mu.Unlock()
			return msg, true
		}
		dead := p.state == StateDead
		p.mu.Unlock()
		if dead {
			return Message{}, false
		}

		var timeoutCh <-chan time.Time
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			timeoutCh = timer.C
		}
		select {
		case <-p.notify:
		case <-timeoutCh:
			return Message{}, false
		}
	}
}
