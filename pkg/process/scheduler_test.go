package process

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yasakei/neutron/pkg/value"
)

// fakeRunner stands in for the VM: spawning a process just means running
// a Go closure, so these tests exercise the scheduler's PID table and
// mailboxes without needing a real Function/Chunk.
type fakeRunner struct {
	call func(args []value.Value) (value.Value, error)
}

func (r *fakeRunner) Invoke(callee value.Value, args []value.Value) (value.Value, error) {
	return r.call(args)
}

func TestSpawnAssignsDistinctPIDs(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(3)
	r := &fakeRunner{call: func(args []value.Value) (value.Value, error) {
		defer wg.Done()
		return value.Nil(), nil
	}}
	s := NewScheduler(r)

	a := s.Spawn(value.Nil(), nil)
	b := s.Spawn(value.Nil(), nil)
	c := s.Spawn(value.Nil(), nil)
	wg.Wait()

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Equal(t, 3, s.Count())
}

func TestSendReceiveFIFOPerSender(t *testing.T) {
	received := make(chan Message, 10)
	hold := make(chan struct{})
	defer close(hold)
	r := &fakeRunner{call: func(args []value.Value) (value.Value, error) {
		<-hold // keep the process alive so Send finds it running
		return value.Nil(), nil
	}}
	s := NewScheduler(r)
	pid := s.Spawn(value.Nil(), nil)

	go func() {
		for i := 0; i < 3; i++ {
			msg, ok := s.Receive(pid, time.Second)
			if !ok {
				return
			}
			received <- msg
		}
	}()

	sender := PID(99)
	assert.True(t, s.Send(sender, pid, value.Number(1)))
	assert.True(t, s.Send(sender, pid, value.Number(2)))
	assert.True(t, s.Send(sender, pid, value.Number(3)))

	for i := 1; i <= 3; i++ {
		select {
		case msg := <-received:
			assert.Equal(t, float64(i), msg.Data.AsNumber())
			assert.Equal(t, sender, msg.Sender)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestReceiveTimesOutWithoutMessage(t *testing.T) {
	r := &fakeRunner{call: func(args []value.Value) (value.Value, error) {
		return value.Nil(), nil
	}}
	s := NewScheduler(r)
	pid := s.Spawn(value.Nil(), nil)

	_, ok := s.Receive(pid, 20*time.Millisecond)
	assert.False(t, ok)
}

func TestSendToUnknownPIDFails(t *testing.T) {
	r := &fakeRunner{call: func(args []value.Value) (value.Value, error) {
		return value.Nil(), nil
	}}
	s := NewScheduler(r)
	assert.False(t, s.Send(1, 12345, value.Nil()))
}

func TestKillStopsPendingReceive(t *testing.T) {
	started := make(chan struct{})
	r := &fakeRunner{call: func(args []value.Value) (value.Value, error) {
		close(started)
		<-time.After(time.Hour) // never actually reached by the test
		return value.Nil(), nil
	}}
	s := NewScheduler(r)
	pid := s.Spawn(value.Nil(), nil)
	<-started

	done := make(chan bool)
	go func() {
		_, ok := s.Receive(pid, 0)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	s.Kill(pid)

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Kill did not unblock a pending Receive")
	}
	assert.False(t, s.IsAlive(pid))
}

func TestResultReturnsRunnerOutcome(t *testing.T) {
	r := &fakeRunner{call: func(args []value.Value) (value.Value, error) {
		return value.Number(42), nil
	}}
	s := NewScheduler(r)
	pid := s.Spawn(value.Nil(), nil)

	result, err, ok := s.Result(pid)
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, float64(42), result.AsNumber())
}
