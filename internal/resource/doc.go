// Package resource describes typed, transport-independent HTTP resources.
//
// # Overview
//
// A Resource[A] pairs a location with the function that turns the raw response
// body into an A. Resources are plain values: they are built at the call site,
// never mutated, and can be shared freely between concurrent loads. The package
// knows nothing about HTTP; fetching is done by the webservice package.
//
// # Constructors
//
//   - New: decode directly from raw bytes
//   - NewJSON: deserialize the body as generic JSON first, then parse that value
//   - Map: derive a resource whose decoded value is transformed further
//
// # Error Taxonomy
//
// Every failure is an *Error carrying a Kind:
//
//   - KindTransport: no body could be retrieved
//   - KindEmptyBody: the response had a zero-length body
//   - KindDeserialize: the body is not well-formed JSON
//   - KindDecode: the JSON does not have the expected shape
//
// Use errors.Is with ErrTransport, ErrEmptyBody, ErrDeserialize or ErrDecode
// to branch on the kind, or KindOf to read it directly.
//
// # Lists
//
// DecodeList applies an element parser over a JSON array. FailFast (the
// default) rejects the whole list when any element fails; SkipInvalid drops
// bad elements. An empty array always decodes to an empty, non-nil slice.
package resource
