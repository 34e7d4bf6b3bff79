package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxRequestBody caps how much of a request body a handler will read.
const maxRequestBody = 1 << 20 // 1 MiB

// DecodeJSON reads the request body into dst. The body is capped at
// maxRequestBody and must hold exactly one JSON value; trailing garbage
// after the value is rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
