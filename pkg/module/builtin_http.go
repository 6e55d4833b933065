package module

import (
	"io"
	"net/http"
	"strings"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("http", httpModule{})
}

type httpModule struct{}

func (httpModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"get": fn("get", 1, func(h Host, args []value.Value) (value.Value, error) {
			resp, err := http.Get(args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(string(body))), nil
		}),
		"post": fn("post", 2, func(h Host, args []value.Value) (value.Value, error) {
			resp, err := http.Post(args[0].ToString(), "text/plain", strings.NewReader(args[1].ToString()))
			if err != nil {
				return value.Nil(), err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(string(body))), nil
		}),
	}
}
