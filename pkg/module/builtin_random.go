package module

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"math/big"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("random", randomModule{})
}

type randomModule struct{}

// Natives adapts the randomInt/randomFloat/randomBytes
// primitives, all already crypto/rand-backed in the prior
// primitives.go rather than math/rand.
func (randomModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"int": fn("int", 2, func(h Host, args []value.Value) (value.Value, error) {
			lo, hi := int64(args[0].AsNumber()), int64(args[1].AsNumber())
			if lo > hi {
				lo, hi = hi, lo
			}
			n, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
			if err != nil {
				return value.Nil(), err
			}
			return value.Number(float64(n.Int64() + lo)), nil
		}),
		"float": fn("float", 0, func(h Host, args []value.Value) (value.Value, error) {
			buf := make([]byte, 8)
			if _, err := io.ReadFull(rand.Reader, buf); err != nil {
				return value.Nil(), err
			}
			n := uint64(buf[0])<<56 | uint64(buf[1])<<48 | uint64(buf[2])<<40 | uint64(buf[3])<<32 |
				uint64(buf[4])<<24 | uint64(buf[5])<<16 | uint64(buf[6])<<8 | uint64(buf[7])
			return value.Number(float64(n>>11) / float64(uint64(1)<<53)), nil
		}),
		"bytes": fn("bytes", 1, func(h Host, args []value.Value) (value.Value, error) {
			n := int(args[0].AsNumber())
			buf := make([]byte, n)
			if _, err := io.ReadFull(rand.Reader, buf); err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(base64.StdEncoding.EncodeToString(buf))), nil
		}),
	}
}
