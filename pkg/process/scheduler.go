package process

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yasakei/neutron/pkg/value"
)

// Runner is the callback surface the scheduler needs from the VM: running
// a function value to completion with the given arguments. *vm.VM
// satisfies this via its exported Invoke method (pkg/vm/host.go), so this
// package never imports pkg/vm and no import cycle exists.
type Runner interface {
	Invoke(callee value.Value, args []value.Value) (value.Value, error)
}

// Scheduler is the process table described in spec §4.7,
// grounded on original_source/include/runtime/process.h's
// ProcessScheduler. Each spawned process runs on its own goroutine; the
// Runner is expected to serialize VM reentry itself (the VM's
// reentrantMutex), so concurrent processes interleave at message-passing
// granularity rather than true parallel bytecode execution — the Go
// analogue of a single-scheduler BEAM node.
type Scheduler struct {
	runner Runner

	mu        sync.Mutex
	processes map[PID]*process
	nextPID   uint64

	currentMu sync.Mutex
	current   map[int64]PID // goroutine id -> PID, for Self()

	spawned   uint64
	delivered uint64
}

// NewScheduler creates a scheduler that runs spawned functions through runner.
func NewScheduler(runner Runner) *Scheduler {
	return &Scheduler{
		runner:    runner,
		processes: make(map[PID]*process),
		current:   make(map[int64]PID),
	}
}

// goroutineID parses the running goroutine's id out of runtime.Stack's
// header line — the same trick pkg/vm's reentrant lock uses, duplicated
// here rather than exported across packages to keep the two locks
// independent.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

// Spawn starts fn(args...) on a new process and returns its PID
// immediately; the function body runs asynchronously on its own goroutine.
func (s *Scheduler) Spawn(fn value.Value, args []value.Value) PID {
	s.mu.Lock()
	s.nextPID++
	pid := PID(s.nextPID)
	p := newProcess(pid)
	s.processes[pid] = p
	s.mu.Unlock()

	atomic.AddUint64(&s.spawned, 1)

	go func() {
		gid := goroutineID()
		s.currentMu.Lock()
		s.current[gid] = pid
		s.currentMu.Unlock()
		defer func() {
			s.currentMu.Lock()
			delete(s.current, gid)
			s.currentMu.Unlock()
			close(p.done)
		}()

		p.setState(StateRunning)
		result, err := s.runner.Invoke(fn, args)
		p.mu.Lock()
		p.result = result
		p.err = err
		p.mu.Unlock()
		if err != nil {
			p.setState(StateDead)
		} else {
			p.setState(StateFinished)
		}
	}()

	return pid
}

// Send delivers data to pid's mailbox, tagged with from. Returns false if
// pid doesn't exist or has already terminated.
func (s *Scheduler) Send(from, to PID, data value.Value) bool {
	s.mu.Lock()
	p, ok := s.processes[to]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if st := p.getState(); st == StateDead || st == StateFinished {
		return false
	}
	p.enqueue(Message{Sender: from, Data: data})
	atomic.AddUint64(&s.delivered, 1)
	return true
}

// Receive blocks until a message arrives for pid or timeout elapses (0 =
// block indefinitely). Returns false on timeout or if pid is unknown.
func (s *Scheduler) Receive(pid PID, timeout time.Duration) (Message, bool) {
	s.mu.Lock()
	p, ok := s.processes[pid]
	s.mu.Unlock()
	if !ok {
		return Message{}, false
	}
	p.setState(StateWaiting)
	msg, ok := p.dequeue(timeout)
	if p.getState() != StateDead {
		p.setState(StateRunning)
	}
	return msg, ok
}

// Self reports the PID of the process running on the calling goroutine,
// or (0, false) if the caller isn't running inside a spawned process.
func (s *Scheduler) Self() (PID, bool) {
	gid := goroutineID()
	s.currentMu.Lock()
	pid, ok := s.current[gid]
	s.currentMu.Unlock()
	return pid, ok
}

// IsAlive reports whether pid exists and hasn't finished or been killed.
func (s *Scheduler) IsAlive(pid PID) bool {
	s.mu.Lock()
	p, ok := s.processes[pid]
	s.mu.Unlock()
	if !ok {
		return false
	}
	st := p.getState()
	return st != StateFinished && st != StateDead
}

// Kill marks pid dead, waking any pending Receive so it returns (false).
// Because the runner executes fn synchronously on the process's
// goroutine, Kill cannot interrupt code already running inside Invoke —
// it only prevents the process from waiting on further messages, matching
// the scheduler's cooperative (not preemptive) process model.
func (s *Scheduler) Kill(pid PID) {
	s.mu.Lock()
	p, ok := s.processes[pid]
	s.mu.Unlock()
	if !ok {
		return
	}
	p.setState(StateDead)
}

// Result returns the finished process's return value and error, blocking
// until it terminates.
func (s *Scheduler) Result(pid PID) (value.Value, error, bool) {
	s.mu.Lock()
	p, ok := s.processes[pid]
	s.mu.Unlock()
	if !ok {
		return value.Nil(), nil, false
	}
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.err, true
}

// Count returns the number of processes ever spawned that haven't been
// reaped from the table (backs the process module's count() native).
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processes)
}

// Stats mirrors the original ProcessScheduler::Stats counters.
type Stats struct {
	ProcessesSpawned  uint64
	MessagesDelivered uint64
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		ProcessesSpawned:  atomic.LoadUint64(&s.spawned),
		MessagesDelivered: atomic.LoadUint64(&s.delivered),
	}
}
