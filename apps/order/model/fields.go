package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Request field names, as they appear in JSON bodies.
const (
	FieldCustomerID = "customer_id"
	FieldOrderDate  = "order_date"
	FieldItemID     = "item_id"
	FieldQuantity   = "quantity"
	FieldUnitRate   = "unit_rate"
)

// Fields is a decoded JSON object. Presence of a key matters: absent keys are
// left untouched by updates.
type Fields map[string]any

func (f Fields) missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if _, ok := f[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func missingFields(names []string) error {
	return &ValidationError{
		Field:   strings.Join(names, ","),
		Message: "Missing required fields: " + strings.Join(names, ", "),
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) ||
			n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
