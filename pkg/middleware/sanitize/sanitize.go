package sanitize

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

var stripper = strings.NewReplacer("<", "", ">", "")

// Clean removes angle brackets and surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(stripper.Replace(s))
}

// Middleware cleans every string in JSON request bodies and every query value.
// Bodies that do not parse are passed on untouched so binding reports them.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if q := req.URL.Query(); len(q) > 0 {
				for k, vals := range q {
					for i := range vals {
						vals[i] = Clean(vals[i])
					}
					q[k] = vals
				}
				req.URL.RawQuery = q.Encode()
			}

			if req.Body != nil && strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				raw, err := io.ReadAll(req.Body)
				_ = req.Body.Close()
				if err != nil {
					return err
				}
				cleaned := cleanJSON(raw)
				req.Body = io.NopCloser(bytes.NewReader(cleaned))
				req.ContentLength = int64(len(cleaned))
			}
			return next(c)
		}
	}
}

func cleanJSON(raw []byte) []byte {
	if len(bytes.TrimSpace(raw)) == 0 {
		return raw
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	out, err := json.Marshal(walk(v))
	if err != nil {
		return raw
	}
	return out
}

func walk(v any) any {
	switch t := v.(type) {
	case string:
		return Clean(t)
	case map[string]any:
		for k, val := range t {
			t[k] = walk(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = walk(t[i])
		}
		return t
	default:
		return v
	}
}
