package resource

import (
	"encoding/json"
	"fmt"
)

// DecodeFunc converts a raw response body into A.
type DecodeFunc[A any] func(body []byte) (A, error)

// ParseFunc converts an already-deserialized JSON value into A.
type ParseFunc[A any] func(v any) (A, error)

// Resource pairs a retrieval location with the decoder for its body.
// The zero value has no location and always fails to decode.
type Resource[A any] struct {
	location string
	decode   DecodeFunc[A]
}

// New builds a Resource from a location and a raw-body decoder.
func New[A any](location string, decode DecodeFunc[A]) Resource[A] {
	return Resource[A]{location: location, decode: decode}
}

// NewJSON builds a Resource whose body is first deserialized as JSON into a
// generic value (maps, slices, strings, float64, bool, nil) and then handed
// to parse.
func NewJSON[A any](location string, parse ParseFunc[A]) Resource[A] {
	return New(location, func(body []byte) (A, error) {
		var zero A
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return zero, &Error{Kind: KindDeserialize, Err: fmt.Errorf("parse json: %w", err)}
		}
		if parse == nil {
			return zero, Errorf(KindDecode, "no parser")
		}
		out, err := parse(v)
		if err != nil {
			return zero, Wrap(KindDecode, "", err)
		}
		return out, nil
	})
}

// Map derives a resource with the same location whose decoded value is
// passed through fn.
func Map[A, B any](r Resource[A], fn func(A) (B, error)) Resource[B] {
	return New(r.location, func(body []byte) (B, error) {
		var zero B
		a, err := r.Decode(body)
		if err != nil {
			return zero, err
		}
		b, err := fn(a)
		if err != nil {
			return zero, Wrap(KindDecode, "", err)
		}
		return b, nil
	})
}

// Location returns the address the resource is fetched from.
func (r Resource[A]) Location() string {
	return r.location
}

// Decode runs the resource's decoder over body.
func (r Resource[A]) Decode(body []byte) (A, error) {
	if r.decode == nil {
		var zero A
		return zero, &Error{Kind: KindDecode, Location: r.location, Err: fmt.Errorf("resource has no decoder")}
	}
	out, err := r.decode(body)
	if err != nil {
		var zero A
		return zero, Wrap(KindDecode, r.location, err)
	}
	return out, nil
}
