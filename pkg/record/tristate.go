package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TriState is a probe result that distinguishes "never checked" from
// "checked, found nothing".
//
// The zero value is Unknown. In JSON, Unknown is null and the other states
// are plain booleans.
type TriState int8

const (
	Unknown TriState = iota
	False
	True
)

// Known returns the TriState for a definite boolean.
func Known(b bool) TriState {
	if b {
		return True
	}
	return False
}

// IsKnown reports whether the flag was set by a probe.
func (t TriState) IsKnown() bool { return t != Unknown }

// Bool returns the flag value and whether it is known.
func (t TriState) Bool() (value, ok bool) {
	return t == True, t != Unknown
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, true or false.
func (t *TriState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Unknown
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tri-state flag: %w", err)
	}
	*t = Known(b)
	return nil
}
