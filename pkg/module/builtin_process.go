package module

import (
	"errors"
	"time"

	"github.com/yasakei/neutron/pkg/process"
	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("process", processModule{})
}

type processModule struct{}

// Natives wires the Erlang-style primitives of pkg/process (spec §4.7)
// into a `use process;` module: spawn/send/receive/self/kill/isAlive/count.
func (processModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"spawn": fn("spawn", -1, func(h Host, args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Nil(), errors.New("process.spawn requires a function argument")
			}
			pid := h.Scheduler().Spawn(args[0], args[1:])
			return value.Number(float64(pid)), nil
		}),
		"send": fn("send", 2, func(h Host, args []value.Value) (value.Value, error) {
			to := process.PID(uint64(args[0].AsNumber()))
			self, _ := h.Scheduler().Self()
			ok := h.Scheduler().Send(self, to, args[1])
			return value.Bool(ok), nil
		}),
		"receive": fn("receive", 0, func(h Host, args []value.Value) (value.Value, error) {
			self, ok := h.Scheduler().Self()
			if !ok {
				return value.Nil(), nil
			}
			msg, ok := h.Scheduler().Receive(self, 0)
			if !ok {
				return value.Nil(), nil
			}
			m := h.AllocMapObject()
			m.Set("from", value.Number(float64(msg.Sender)))
			m.Set("data", msg.Data)
			return value.FromObject(m), nil
		}),
		"receiveTimeout": fn("receiveTimeout", 1, func(h Host, args []value.Value) (value.Value, error) {
			self, ok := h.Scheduler().Self()
			if !ok {
				return value.Nil(), nil
			}
			timeout := time.Duration(args[0].AsNumber()) * time.Millisecond
			msg, ok := h.Scheduler().Receive(self, timeout)
			if !ok {
				return value.Nil(), nil
			}
			m := h.AllocMapObject()
			m.Set("from", value.Number(float64(msg.Sender)))
			m.Set("data", msg.Data)
			return value.FromObject(m), nil
		}),
		"self": fn("self", 0, func(h Host, args []value.Value) (value.Value, error) {
			pid, ok := h.Scheduler().Self()
			if !ok {
				return value.Number(0), nil
			}
			return value.Number(float64(pid)), nil
		}),
		"isAlive": fn("isAlive", 1, func(h Host, args []value.Value) (value.Value, error) {
			pid := process.PID(uint64(args[0].AsNumber()))
			return value.Bool(h.Scheduler().IsAlive(pid)), nil
		}),
		"kill": fn("kill", 1, func(h Host, args []value.Value) (value.Value, error) {
			pid := process.PID(uint64(args[0].AsNumber()))
			h.Scheduler().Kill(pid)
			return value.Nil(), nil
		}),
		"count": fn("count", 0, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(h.Scheduler().Count())), nil
		}),
		"sleep": fn("sleep", 1, func(h Host, args []value.Value) (value.Value, error) {
			time.Sleep(time.Duration(args[0].AsNumber()) * time.Millisecond)
			return value.Nil(), nil
		}),
	}
}
