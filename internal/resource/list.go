package resource

import (
	"fmt"
	"strings"
)

// ListPolicy controls how DecodeList treats elements that fail to decode.
type ListPolicy int

const (
	// FailFast rejects the whole list at the first bad element.
	FailFast ListPolicy = iota
	// SkipInvalid drops bad elements and keeps the rest.
	SkipInvalid
)

func (p ListPolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipInvalid:
		return "skip-invalid"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseListPolicy accepts "fail-fast" or "skip-invalid" (case-insensitive).
// An empty value selects FailFast.
func ParseListPolicy(value string) (ListPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "skip-invalid", "skipinvalid", "skip":
		return SkipInvalid, nil
	default:
		return FailFast, fmt.Errorf("unknown list policy %q", value)
	}
}

// DecodeList decodes a JSON array element by element. The result is never
// nil on success, so an empty array yields an empty slice.
func DecodeList[A any](v any, policy ListPolicy, elem ParseFunc[A]) ([]A, error) {
	arr, err := Array(v)
	if err != nil {
		return nil, err
	}
	out := make([]A, 0, len(arr))
	for i, raw := range arr {
		item, err := elem(raw)
		if err != nil {
			if policy == SkipInvalid {
				continue
			}
			return nil, &Error{Kind: KindDecode, Err: fmt.Errorf("element %d: %w", i, err)}
		}
		out = append(out, item)
	}
	return out, nil
}
