package vm

import (
	"bytes"
	"runtime"
	"strconv"
)

// reentrantMutex is the VM-wide lock spec §4.2/§5 describes: scheduler
// worker goroutines acquire it before reentering interpret/run, but a
// goroutine that already holds it (a native callback — array `map`/`filter`
// reentering the dispatch loop to run the supplied function — calling back
// into the VM) must not deadlock itself. A plain sync.Mutex can't express
// that, so this pairs a one-buffered channel (the actual exclusion) with a
// small owner/depth record guarded by its own mutex.
type reentrantMutex struct {
	meta  chanGuard
	sem   chan struct{}
	owner int64
	depth int
}

// chanGuard is a tiny spinlock-free mutex used only to protect owner/depth;
// kept distinct from the main exclusion channel so Lock can check "do I
// already own this" without contending on sem.
type chanGuard chan struct{}

func newChanGuard() chanGuard {
	g := make(chanGuard, 1)
	g <- struct{}{}
	return g
}

func (g chanGuard) lock()   { <-g }
func (g chanGuard) unlock() { g <- struct{}{} }

func newReentrantMutex() *reentrantMutex {
	return &reentrantMutex{meta: newChanGuard(), sem: make(chan struct{}, 1)}
}

// goroutineID parses the running goroutine's id out of runtime.Stack's
// header line. There is no public API for this; every Go codebase that
// needs a reentrant-by-goroutine lock resorts to the same trick.
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

// Lock acquires the lock, recursing transparently if the calling goroutine
// already holds it.
func (m *reentrantMutex) Lock() {
	id := goroutineID()
	m.meta.lock()
	if m.depth > 0 && m.owner == id {
		m.depth++
		m.meta.unlock()
		return
	}
	m.meta.unlock()

	m.sem <- struct{}{}

	m.meta.lock()
	m.owner = id
	m.depth = 1
	m.meta.unlock()
}

// Unlock releases one level of recursion, freeing the lock for other
// goroutines once depth reaches zero.
func (m *reentrantMutex) Unlock() {
	m.meta.lock()
	m.depth--
	done := m.depth == 0
	if done {
		m.owner = 0
	}
	m.meta.unlock()
	if done {
		<-m.sem
	}
}
