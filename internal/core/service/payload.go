package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errTrailingData = errors.New("unexpected data after JSON value")

// Payload is the result of decoding a request body. Exactly one of Value or
// Err is meaningful: Err is set when the body was not valid JSON.
type Payload struct {
	Value any
	Err   error
}

// DecodePayload reads a single JSON value from r. Numbers are kept as
// json.Number so amounts never pass through float64.
func DecodePayload(r io.Reader) Payload {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Payload{Err: fmt.Errorf("decode body: %w", err)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Payload{Err: errTrailingData}
	}
	return Payload{Value: v}
}
