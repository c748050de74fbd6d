package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an opaque identifier in canonical string form. The market API
// serves the same identifier sometimes as a JSON number and sometimes as a
// string; both unmarshal into the same canonical value so equality
// comparisons never fail on a representation mismatch.
type ID string

// NormalizeID converts a raw decoded JSON value into a canonical ID.
func NormalizeID(v any) ID {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return canonicalID(t)
	case json.Number:
		return canonicalID(t.String())
	case float64:
		// Round-trip through int64 when exact, otherwise keep the shortest
		// form strconv produces.
		if i := int64(t); float64(i) == t {
			return ID(strconv.FormatInt(i, 10))
		}
		return ID(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return ID(strconv.Itoa(t))
	case int64:
		return ID(strconv.FormatInt(t, 10))
	default:
		return canonicalID(fmt.Sprint(t))
	}
}

func canonicalID(s string) ID {
	s = strings.TrimSpace(s)
	// Integral numeric strings lose leading zeros so "042" and 42 compare
	// equal no matter which form the API chose.
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(i, 10))
	}
	return ID(s)
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a number, a string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal id: %w", err)
		}
		*id = canonicalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unmarshal id: %w", err)
	}
	*id = canonicalID(n.String())
	return nil
}

// MarshalJSON always emits the string form, keeping persisted snapshots
// stable regardless of what the API sent.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}
