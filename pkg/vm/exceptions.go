package vm

import (
	"github.com/yasakei/neutron/pkg/bytecode"
	"github.com/yasakei/neutron/pkg/value"
)

// ExceptionFrame tracks one active try/catch/finally construct (spec
// §3.6): the bytecode range it covers, where its catch/finally handlers
// start (bytecode.SentinelOffset if absent), which call frame it belongs
// to, and the operand-stack depth to unwind back to when it's entered.
type ExceptionFrame struct {
	TryStart     int
	TryEnd       uint16
	CatchStart   uint16
	FinallyStart uint16
	FrameDepth   int // index into the VM's frame stack this try lives in
	StackBase    int // operand stack length when OP_TRY ran
	HasException bool
	Pending      value.Value
}

// beginTry implements OP_TRY: read its 3 u16 operands and push a new
// ExceptionFrame scoped to the instructions that follow (TryStart is the
// position right after the operands, i.e. where the try body starts).
func (m *VM) beginTry(f *CallFrame, chunk *bytecode.Chunk) {
	tryEnd := m.readU16(f)
	catchStart := m.readU16(f)
	finallyStart := m.readU16(f)
	m.exceptions = append(m.exceptions, &ExceptionFrame{
		TryStart:     f.IP,
		TryEnd:       tryEnd,
		CatchStart:   catchStart,
		FinallyStart: finallyStart,
		FrameDepth:   len(m.frames) - 1,
		StackBase:    len(m.stack),
	})
}

// endTry implements OP_END_TRY, reached exactly once per try/catch/finally
// construct no matter which path got there: after the try body when
// nothing was thrown, after catch (then finally) when an exception was
// caught, or after finally alone when an exception reached it with no
// catch present. Pops the innermost exception frame and, if it still
// carries a pending exception (only possible on the finally-without-catch
// path), consumes it here rather than rethrowing — spec §9 documents this
// as intentional, possibly surprising, behavior that must be preserved
// rather than "fixed", mirroring
// _examples/original_source/src/vm.cpp's OP_END_TRY handler.
func (m *VM) endTry() {
	if len(m.exceptions) == 0 {
		return
	}
	ef := m.exceptions[len(m.exceptions)-1]
	m.exceptions = m.exceptions[:len(m.exceptions)-1]
	if ef.HasException {
		ef.HasException = false
		ef.Pending = value.Nil()
		m.hasPending = false
		m.pending = value.Nil()
	}
}

// retry implements OP_RETRY: jump back to the innermost active exception
// frame's try start, re-running the try body (used by source-level retry
// constructs that want one more attempt after a catch).
func (m *VM) retry(f *CallFrame) {
	if len(m.exceptions) == 0 {
		return
	}
	f.IP = m.exceptions[len(m.exceptions)-1].TryStart
}

// popExceptionFramesAbove drops every exception frame belonging to
// frameIdx or deeper — called just before a normal RETURN discards that
// frame, since its try scopes no longer exist once it's gone.
func (m *VM) popExceptionFramesAbove(frameIdx int) {
	kept := m.exceptions[:0]
	for _, ef := range m.exceptions {
		if ef.FrameDepth < frameIdx {
			kept = append(kept, ef)
		}
	}
	m.exceptions = kept
}

func (m *VM) dropExceptionFramesAt(frameIdx int) {
	kept := m.exceptions[:0]
	for _, ef := range m.exceptions {
		if ef.FrameDepth != frameIdx {
			kept = append(kept, ef)
		}
	}
	m.exceptions = kept
}

// throwValue implements THROW's search-and-dispatch half of spec §4.6's
// exception state machine: search the exception-frame stack, innermost
// first, for one covering the current instruction in the current call
// frame; if none covers it, pop that call frame and keep searching the
// caller. fatalIfUncaught controls whether an uncaught throw is reported
// as the originating RuntimeError (true, from a VM-raised fail()) or as a
// generic uncaught-exception error (false, from a source-level `throw`).
func (m *VM) throwValue(v value.Value, fatalIfUncaught bool) (bool, error) {
	originalTrace := m.stackTrace()
	for len(m.frames) > 0 {
		curIdx := len(m.frames) - 1
		ip := m.frames[curIdx].IP

		matched := -1
		for i := len(m.exceptions) - 1; i >= 0; i-- {
			ef := m.exceptions[i]
			if ef.FrameDepth == curIdx && ip >= ef.TryStart && ip <= int(ef.TryEnd) {
				matched = i
				break
			}
		}

		if matched == -1 {
			m.dropExceptionFramesAt(curIdx)
			m.stack = m.stack[:m.frames[curIdx].SlotOffset]
			m.frames = m.frames[:curIdx]
			continue
		}

		ef := m.exceptions[matched]
		m.stack = m.stack[:ef.StackBase]

		hasFinally := ef.FinallyStart != bytecode.SentinelOffset
		hasCatch := ef.CatchStart != bytecode.SentinelOffset

		switch {
		case hasCatch:
			// Catch takes priority over finally when both are present:
			// the frame stays on m.exceptions (catch falls through to
			// finally in the compiled bytecode, and the trailing
			// OP_END_TRY after finally is what pops it).
			m.push(v)
			m.frames[curIdx].IP = int(ef.CatchStart)
			return true, nil
		case hasFinally:
			// No catch: run finally, leaving the frame marked pending so
			// the trailing OP_END_TRY reached at the end of finally knows
			// to consume it instead of rethrowing.
			ef.HasException = true
			ef.Pending = v
			m.hasPending, m.pending = true, v
			m.frames[curIdx].IP = int(ef.FinallyStart)
			return true, nil
		default:
			m.exceptions = append(m.exceptions[:matched], m.exceptions[matched+1:]...)
		}
	}

	if fatalIfUncaught {
		return false, newRuntimeError(RuntimeErrorKind, originalTrace, "%s", v.ToString())
	}
	return false, newRuntimeError(RuntimeErrorKind, originalTrace, "uncaught exception: %s", v.ToString())
}
