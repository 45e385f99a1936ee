// Package coerce converts raw property and quantity values into normalized
// strings, booleans, and numbers. The rules are deliberately narrow: no
// heuristic unwrapping, absence and unparseable input both yield ok=false.
package coerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// String returns the textual representation of raw. Booleans render as the
// IFC logical literals T and F. ok is false only when raw is nil.
func String(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case bool:
		if v {
			return "T", true
		}
		return "F", true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Bool accepts T or F (any case, surrounding whitespace ignored).
// Every other value, including "true" and "", yields ok=false.
func Bool(raw any) (value bool, ok bool) {
	s, present := String(raw)
	if !present {
		return false, false
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "T":
		return true, true
	case "F":
		return false, true
	default:
		return false, false
	}
}

// Number parses raw as an invariant floating point literal.
func Number(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	s, present := String(raw)
	if !present {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Blank reports whether raw is absent or only whitespace.
func Blank(raw any) bool {
	s, ok := String(raw)
	return !ok || strings.TrimSpace(s) == ""
}
