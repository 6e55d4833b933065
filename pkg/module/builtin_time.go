package module

import (
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("time", timeModule{})
}

type timeModule struct{}

// Natives replaces an earlier hand-rolled dateFormat layout table
// (a handful of hardcoded cases falling back to Go reference-time
// layout strings) with a real strftime implementation, matching the
// %Y-%m-%d-style format strings original_source's time helpers use.
func (timeModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"now": fn("now", 0, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Now().Unix())), nil
		}),
		"strftime": fn("strftime", 2, func(h Host, args []value.Value) (value.Value, error) {
			t := time.Unix(int64(args[0].AsNumber()), 0).UTC()
			return value.FromObject(h.AllocString(strftime.Format(args[1].ToString(), t))), nil
		}),
		"parse": fn("parse", 2, func(h Host, args []value.Value) (value.Value, error) {
			layout := strftime.Layout(args[1].ToString())
			t, err := time.Parse(layout, args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.Number(float64(t.Unix())), nil
		}),
		"year": fn("year", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Unix(int64(args[0].AsNumber()), 0).UTC().Year())), nil
		}),
		"month": fn("month", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Unix(int64(args[0].AsNumber()), 0).UTC().Month())), nil
		}),
		"day": fn("day", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Unix(int64(args[0].AsNumber()), 0).UTC().Day())), nil
		}),
		"hour": fn("hour", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Unix(int64(args[0].AsNumber()), 0).UTC().Hour())), nil
		}),
		"minute": fn("minute", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Unix(int64(args[0].AsNumber()), 0).UTC().Minute())), nil
		}),
		"second": fn("second", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(float64(time.Unix(int64(args[0].AsNumber()), 0).UTC().Second())), nil
		}),
		"sleep": fn("sleep", 1, func(h Host, args []value.Value) (value.Value, error) {
			time.Sleep(time.Duration(args[0].AsNumber() * float64(time.Second)))
			return value.Nil(), nil
		}),
	}
}
